package bot

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/scoutshq/outpost/internal/model"
)

// Notification levels. Anything except LevelError is delivered silently.
const (
	LevelError = "error"
	LevelInfo  = "info"
)

// maxMessageLen is the Telegram per-message limit the notifier chunks at.
const maxMessageLen = 4000

const timestampFormat = "2006-01-02 15:04:05"

// Status messages carry Moscow wall-clock time, matching the on-call rota.
var reportZone = time.FixedZone("MSK", 3*60*60)

var htmlEscaper = strings.NewReplacer("<", "&lt;", ">", "&gt;")

// Notifier delivers status and error reports to Telegram chats. It owns the
// pinned status message handle: unset at construction, set on the first
// status send, reused for edits on subsequent all-success reports.
type Notifier struct {
	api         API
	projectName string
	errorChatID int64
	dumpChatID  int64
	now         func() time.Time

	mu       sync.Mutex
	pinnedID int // 0 means no status message has been pinned yet
}

// NewNotifier creates a notifier delivering to the given chats.
func NewNotifier(api API, projectName string, errorChatID, dumpChatID int64) *Notifier {
	return &Notifier{
		api:         api,
		projectName: projectName,
		errorChatID: errorChatID,
		dumpChatID:  dumpChatID,
		now:         time.Now,
	}
}

// SendMessage sends text to the chat in chunks of at most maxMessageLen
// runes, in order. A zero chatID targets the error chat. Messages below
// LevelError are delivered silently.
//
// Telegram rejects a chunk whose <code> block is cut open by the split; in
// that case the current chunk is resent with a closing tag and the block is
// reopened at the start of the next chunk, so long tracebacks survive intact.
func (n *Notifier) SendMessage(text, level string, chatID int64) error {
	if chatID == 0 {
		chatID = n.errorChatID
	}
	silent := level != LevelError

	remaining := []rune(text)
	for len(remaining) > 0 {
		chunk := remaining
		if len(chunk) > maxMessageLen {
			chunk = chunk[:maxMessageLen]
		}
		rest := remaining[len(chunk):]

		_, err := n.api.SendMessage(chatID, string(chunk), silent, true)
		if err != nil {
			if !isUnterminatedCodeTag(err) {
				return err
			}
			if _, err := n.api.SendMessage(chatID, string(chunk)+"</code>", silent, true); err != nil {
				return err
			}
			if len(rest) == 0 {
				return nil
			}
			remaining = append([]rune("<code>"), rest...)
			continue
		}

		remaining = rest
	}

	return nil
}

// SendTracebackMessage escapes markup in both the human-readable message and
// the code block, wraps the code block in <code> tags and delegates to
// SendMessage.
func (n *Notifier) SendTracebackMessage(message, code, level string) error {
	text := fmt.Sprintf("%s\n\n<code>%s</code>",
		htmlEscaper.Replace(message), htmlEscaper.Replace(code))
	return n.SendMessage(text, level, 0)
}

// SendMessageSafe is SendMessage for contexts where a secondary notification
// failure must never mask the failure being reported: it logs and swallows
// any error.
func (n *Notifier) SendMessageSafe(text, level string, chatID int64) {
	if err := n.SendMessage(text, level, chatID); err != nil {
		slog.Error("Failed to send error message", "error", err)
	}
}

// SendTracebackMessageSafe is the swallowing variant of SendTracebackMessage.
func (n *Notifier) SendTracebackMessageSafe(message, code, level string) {
	if err := n.SendTracebackMessage(message, code, level); err != nil {
		slog.Error("Failed to send error message", "error", err)
	}
}

// SendPingStatus delivers the aggregated ping report. When every check
// succeeded and a pinned status message already exists, that message is
// edited in place to keep the channel quiet; otherwise a fresh message is
// sent and pinned so a failure is never silenced by notification settings.
func (n *Notifier) SendPingStatus(report model.PingReport) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Ping status (last update: %s):\n",
		n.now().In(reportZone).Format(timestampFormat))

	for _, host := range report {
		fmt.Fprintf(&b, "\n%s:\n", host.Host)
		for _, check := range host.Checks {
			emoji := "✅"
			if check.Status != model.StatusSuccessful {
				emoji = "❌"
			}
			fmt.Fprintf(&b, "%s%s: %s\n", emoji, check.Endpoint, check.Status)
		}
	}
	text := b.String()

	n.mu.Lock()
	defer n.mu.Unlock()

	if n.pinnedID != 0 && report.AllOK() {
		return n.api.EditMessageText(n.errorChatID, n.pinnedID, text)
	}

	id, err := n.api.SendMessage(n.errorChatID, text, false, false)
	if err != nil {
		return err
	}
	n.pinnedID = id

	return n.api.PinMessage(n.errorChatID, id)
}

// SendDBDump ships a database dump file to the dump chat.
func (n *Notifier) SendDBDump(path string) error {
	return n.api.SendDocument(n.dumpChatID, path, n.projectName, true)
}

// isUnterminatedCodeTag recognizes the Telegram rejection raised when a
// message ends inside an open <code> entity.
func isUnterminatedCodeTag(err error) bool {
	return err != nil && strings.Contains(
		strings.ToLower(err.Error()),
		"find end tag corresponding to start tag code",
	)
}
