// Package runner drives a conversation to completion under signal control.
package runner

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dimiro1/banner"
)

const Version = "dev"

// Conversation is anything that runs turns until the dialog is done.
type Conversation interface {
	Run(ctx context.Context) error
}

func PrintBanner() {
	tpl := "{{ .Title \"COVIS\" \"\" 0 }}\nVersion: " + Version + "\n"
	banner.Init(os.Stdout, true, true, bytes.NewBufferString(tpl))
}

// Run prints the banner and executes the conversation until it reports done,
// fails, or the process receives SIGINT/SIGTERM.
func Run(ctx context.Context, conv Conversation, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	PrintBanner()
	err := conv.Run(ctx)
	if err == nil {
		logger.Info("conversation finished")
	}
	return err
}
