// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package bot turns inbound chat events into contest workflows.

# Events

The chat adapter converts platform events into Message and Reaction values
and hands them to a Dispatcher, which runs each one in its own goroutine:

	d := bot.NewDispatcher(cfg.MaxInFlight, bot.DefaultEventTimeout)
	d.Dispatch("message", func(ctx context.Context) error {
		return b.HandleMessage(ctx, msg)
	})

A panicking workflow is logged and does not affect other events. Shutdown
stops intake and waits for running events.

# Commands

Commands are the first word of a message, case-insensitive:

	$setcanal            officer: restrict the bot to this channel (works anywhere)
	$comandos $comando $help
	$subir <url>         submit a clip (a video attachment also counts)
	$puntos              own balance
	$videos              officer: post approved clips not yet in the vote
	$finalizarvotacion   officer: close the cycle and reward the winner

Everything but $setcanal is ignored outside the configured channel.

# Reactions

On a submission acknowledgement, ✅ and ❌ from an officer approve or reject
the clip; the acknowledgement is then edited and its reactions cleared.
Reactions from members are removed. On a voting-round message, 🗳️ casts a
vote; rejected votes are removed.

# Chat Failures

Chat calls that fail after the store has committed are logged and do not
undo the committed state. The one exception is the submission
acknowledgement: without it nobody can moderate the clip, so the pending
submission is withdrawn and the user may submit again.
*/
package bot
