// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package bot

import (
	"fmt"
	"strings"

	"github.com/danielhkuo/citizen-clips/models"
)

// Command prefixes, matched case-insensitively against the first word
const (
	CmdSetChannel = "$setcanal"
	CmdCommands   = "$comandos"
	CmdCommand    = "$comando"
	CmdHelp       = "$help"
	CmdUpload     = "$subir"
	CmdPoints     = "$puntos"
	CmdVideos     = "$videos"
	CmdFinalize   = "$finalizarvotacion"
)

// Reaction emoji
const (
	EmojiApprove = "✅"
	EmojiReject  = "❌"
	EmojiVote    = "🗳️"
)

// parseCommand splits content into a lowercased command word and its
// arguments. Content without words yields an empty command.
func parseCommand(content string) (string, []string) {
	fields := strings.Fields(content)
	if len(fields) == 0 {
		return "", nil
	}
	return strings.ToLower(fields[0]), fields[1:]
}

// videoAttachment returns the first attachment when it is a video.
func videoAttachment(attachments []Attachment) (Attachment, bool) {
	if len(attachments) == 0 {
		return Attachment{}, false
	}
	first := attachments[0]
	return first, strings.HasPrefix(strings.ToLower(first.ContentType), "video/")
}

// Chat texts
const (
	msgChannelDenied    = "⛔ **ACCESO DENEGADO:** Solo oficiales (Admins) pueden configurar el canal."
	msgAdminDenied      = "⛔ **ACCESO DENEGADO:** Solo oficiales (Admins) pueden usar este comando."
	msgMissingURL       = "❌ **ERROR:** Falta video o enlace."
	msgSectorClosed     = "🔒 **SECTOR CERRADO:** Intenta en el próximo ciclo."
	msgActiveExists     = "⛔ **ALERTA:** Ya tienes una transmisión activa."
	msgAttemptsOut      = "⛔ **ALERTA:** Intentos agotados."
	msgNoApproved       = "Sin transmisiones aprobadas."
	msgVotingOpen       = "🗳️ **VOTACIÓN EN CURSO:** Todas las transmisiones aprobadas ya están en la votación."
	msgVotingStarted    = "**🗳️ INICIANDO PROTOCOLO DE VOTACIÓN**"
	msgNoVotes          = "Nadie votó."
	msgAlreadyFinalized = "🔒 **SECTOR CERRADO:** La votación de este ciclo ya fue finalizada."
	msgSystemFailure    = "⚠️ **FALLA DE SISTEMAS:** Intenta de nuevo más tarde."

	helpPilots = "**🚀 PROTOCOLO DE COMANDOS**\n\n👤 **Pilotos:**\n`$subir` : Sube tu clip.\n`$puntos` : Ver tu reputación.\n"
	helpAdmins = "\n👮‍♂️ **Admins:**\n`$videos` : Iniciar votación.\n`$finalizarvotacion` : Cerrar semana.\n`$setcanal` : Fijar este chat como canal del bot."
)

func channelConfigured(channelID string) string {
	return fmt.Sprintf("✅ **CANAL CONFIGURADO.** A partir de ahora, solo procesaré clips y comandos en este canal: <#%s>.", channelID)
}

func helpText(admin bool) string {
	if admin {
		return helpPilots + helpAdmins
	}
	return helpPilots
}

func submissionReceived(attempt int) string {
	return fmt.Sprintf("📹 **TRANSMISIÓN RECIBIDA** (Intento %d/%d). Procesando...", attempt, models.MaxAttempts)
}

func pointsBalance(points int) string {
	return fmt.Sprintf("💳 Créditos: **%d** Puntos.", points)
}

func votingEntry(sub models.Submission) string {
	return fmt.Sprintf("🎬 CLIP DE <@%s>\n%s", sub.UserID, sub.URL)
}

func winnerAnnouncement(w *models.Winner) string {
	return fmt.Sprintf("🏆 **TOP 1 DEL VERSO:** <@%s> con %d votos.", w.Submission.UserID, w.Votes)
}

// moderationNotice replaces the acknowledgement once an officer decides.
func moderationNotice(emoji, state, actorID string) string {
	label := "APROBADO"
	if state == models.StateRejected {
		label = "RECHAZADO"
	}
	return fmt.Sprintf("%s **%s** por CMD <@%s>", emoji, label, actorID)
}
