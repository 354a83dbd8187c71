// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"context"
	"errors"
	"strconv"
	"sync"
)

// ErrUnknownUser is returned by FakeDirectory for users it was not told about.
var ErrUnknownUser = errors.New("unknown user")

// ChatCall records one outbound call made against FakeChat.
type ChatCall struct {
	Method    string
	ChannelID string
	MessageID string
	Content   string
	Emoji     string
	UserID    string
	// ReplyTo is the message a Reply answered.
	ReplyTo   string
}

// FakeChat is an in-memory chat platform. Sent messages get sequential ids
// ("msg-1", "msg-2", ...). It is safe for concurrent use.
type FakeChat struct {
	mu     sync.Mutex
	admins map[string]bool
	nextID int
	calls  []ChatCall

	// SendErr, when set, is returned by Send and Reply.
	SendErr error
}

func NewFakeChat() *FakeChat {
	return &FakeChat{admins: make(map[string]bool)}
}

// SetAdmin grants elevated permission to userID in guildID.
func (f *FakeChat) SetAdmin(guildID, userID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.admins[guildID+"/"+userID] = true
}

func (f *FakeChat) IsAdmin(ctx context.Context, guildID, userID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.admins[guildID+"/"+userID], nil
}

func (f *FakeChat) Send(ctx context.Context, channelID, content string) (string, error) {
	return f.post("Send", channelID, "", content)
}

func (f *FakeChat) Reply(ctx context.Context, channelID, messageID, content string) (string, error) {
	return f.post("Reply", channelID, messageID, content)
}

func (f *FakeChat) post(method, channelID, replyTo, content string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.SendErr != nil {
		return "", f.SendErr
	}
	f.nextID++
	id := "msg-" + strconv.Itoa(f.nextID)
	f.calls = append(f.calls, ChatCall{Method: method, ChannelID: channelID, MessageID: id, Content: content, ReplyTo: replyTo})
	return id, nil
}

func (f *FakeChat) Edit(ctx context.Context, channelID, messageID, content string) error {
	f.record(ChatCall{Method: "Edit", ChannelID: channelID, MessageID: messageID, Content: content})
	return nil
}

func (f *FakeChat) React(ctx context.Context, channelID, messageID, emoji string) error {
	f.record(ChatCall{Method: "React", ChannelID: channelID, MessageID: messageID, Emoji: emoji})
	return nil
}

func (f *FakeChat) RemoveReaction(ctx context.Context, channelID, messageID, emoji, userID string) error {
	f.record(ChatCall{Method: "RemoveReaction", ChannelID: channelID, MessageID: messageID, Emoji: emoji, UserID: userID})
	return nil
}

func (f *FakeChat) ClearReactions(ctx context.Context, channelID, messageID string) error {
	f.record(ChatCall{Method: "ClearReactions", ChannelID: channelID, MessageID: messageID})
	return nil
}

func (f *FakeChat) record(c ChatCall) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, c)
}

// Calls returns a copy of every recorded call, optionally filtered by method.
func (f *FakeChat) Calls(method string) []ChatCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []ChatCall
	for _, c := range f.calls {
		if method == "" || c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

// LastContent returns the content of the most recent Send or Reply.
func (f *FakeChat) LastContent() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.calls) - 1; i >= 0; i-- {
		if f.calls[i].Method == "Send" || f.calls[i].Method == "Reply" {
			return f.calls[i].Content
		}
	}
	return ""
}

// Reset forgets recorded calls.
func (f *FakeChat) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = nil
}

// FakeDirectory answers dashboard lookups about the bot's guilds and users.
type FakeDirectory struct {
	mu      sync.Mutex
	guilds  map[string]bool
	names   map[string]string
	lookups int
}

func NewFakeDirectory() *FakeDirectory {
	return &FakeDirectory{guilds: make(map[string]bool), names: make(map[string]string)}
}

func (d *FakeDirectory) AddGuild(guildID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.guilds[guildID] = true
}

func (d *FakeDirectory) AddUser(userID, name string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.names[userID] = name
}

func (d *FakeDirectory) HasGuild(guildID string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.guilds[guildID]
}

func (d *FakeDirectory) Username(ctx context.Context, userID string) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.lookups++
	name, ok := d.names[userID]
	if !ok {
		return "", ErrUnknownUser
	}
	return name, nil
}

// Lookups is the number of Username calls made so far.
func (d *FakeDirectory) Lookups() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lookups
}
