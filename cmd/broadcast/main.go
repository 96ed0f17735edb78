package main

import (
	"bufio"
	"context"
	"database/sql"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"

	"vonage_relay/internal/adapters/observability"
	"vonage_relay/internal/adapters/vonage"
	"vonage_relay/internal/app"
	"vonage_relay/internal/domain"
	"vonage_relay/internal/shared"
	mysqlrepo "vonage_relay/internal/storage/mysql"
)

func main() {
	var file, from, channel, text string
	flagSet := pflag.NewFlagSet("broadcast", pflag.ContinueOnError)
	flagSet.StringVarP(&file, "recipients", "r", "-", "file with one recipient per line, - for stdin")
	flagSet.StringVar(&from, "from", "", "sender id or number")
	flagSet.StringVar(&channel, "channel", vonage.ChannelSMS, "messages channel")
	flagSet.StringVarP(&text, "text", "t", "", "message text")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return
		}
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	cfg := shared.Load()

	// 1) initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	recipients, err := readRecipients(file)
	if err != nil {
		log.Fatal().Err(err).Str("file", file).Msg("read recipients failed")
	}
	log.Info().
		Int("recipients", len(recipients)).
		Int("workers", cfg.Workers).
		Str("channel", channel).
		Msg("broadcast starting")

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("db ping ok")

	var keyPEM []byte
	if cfg.VonageToken == "" {
		if keyPEM, err = cfg.PrivateKey(); err != nil {
			log.Fatal().Err(err).Str("path", cfg.VonageKeyPath).Msg("read private key failed")
		}
	}
	tokens, err := vonage.SelectTokenSource(cfg.VonageToken, cfg.VonageAppID, keyPEM)
	if err != nil {
		log.Fatal().Err(err).Msg("no usable vonage credential")
	}
	gw, err := vonage.NewGateway(vonage.Config{
		APIHost:      cfg.VonageAPIHost,
		MeetingsHost: cfg.VonageMeetingsHost,
		Tokens:       tokens,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize vonage gateway")
	}

	b := app.NewBroadcastService(app.NewMessageService(gw, mysqlrepo.New(db)))
	tmpl := domain.OutboundMessage{
		From:        from,
		Channel:     channel,
		MessageType: "text",
		Content:     text,
	}

	var failed int
	for _, o := range b.Broadcast(ctx, recipients, tmpl, cfg.Workers) {
		if !o.Sent() {
			failed++
			log.Warn().Str("to", o.To).Err(o.Err).Msg("not sent")
			continue
		}
		if o.Err != nil {
			log.Warn().Str("to", o.To).Str("message_uuid", o.MessageUUID).Err(o.Err).Msg("sent but not recorded, do not resend")
			continue
		}
		log.Info().Str("to", o.To).Str("message_uuid", o.MessageUUID).Msg("sent")
	}
	log.Info().Int("failed", failed).Msg("broadcast completed")
	if failed > 0 {
		os.Exit(1)
	}
}

// readRecipients skips blank lines and # comments.
func readRecipients(name string) ([]string, error) {
	var r io.Reader = os.Stdin
	if name != "-" {
		f, err := os.Open(name)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}
	var out []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return out, sc.Err()
}
