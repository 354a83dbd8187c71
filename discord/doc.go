// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package discord adapts a discordgo session to the bot's Chat interface and
// the dashboard's directory lookups, and feeds gateway events into a
// bot.Dispatcher.
package discord
