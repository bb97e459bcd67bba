// Command settings reads and writes the sealed runtime settings of the notes
// service, such as the SMTP account used for verification emails.
//
// Usage:
//
//	settings set EMAIL_ADDRESS
//	settings get EMAIL_ADDRESS
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/term"

	"github.com/vasapolrittideah/notes-api/services/notes-service/internal/app"
	"github.com/vasapolrittideah/notes-api/services/notes-service/internal/config"
	"github.com/vasapolrittideah/notes-api/services/notes-service/internal/repository"
	"github.com/vasapolrittideah/notes-api/services/notes-service/internal/usecase"
	"github.com/vasapolrittideah/notes-api/shared/logger"
	"github.com/vasapolrittideah/notes-api/shared/security"
)

const usage = "usage: settings set|get NAME"

var errUsage = errors.New(usage)

// readPassword is swapped in tests to avoid touching the terminal.
var readPassword = term.ReadPassword

type settingStore interface {
	SetSetting(ctx context.Context, name, value string) error
	GetSetting(ctx context.Context, name string) (string, error)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	logger := logger.New(cfg.Log.Level, "console")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, db, err := app.ConnectMongo(ctx, cfg.Mongo)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to mongodb")
	}
	defer func() { _ = client.Disconnect(context.Background()) }()

	cipher, err := security.NewFieldCipher(cfg.Encryption.Secret, cfg.Encryption.Salt)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create field cipher")
	}

	store := usecase.NewSettingUsecase(repository.NewSettingMongoRepository(ctx, logger, db), cipher)

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, store); err != nil {
		fmt.Fprintln(os.Stderr, err)
		cancel()
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdin *os.File, stdout io.Writer, store settingStore) error {
	if len(args) != 2 {
		return errUsage
	}
	name := strings.ToUpper(strings.TrimSpace(args[1]))

	switch args[0] {
	case "set":
		value, err := readValue(stdin, stdout, name)
		if err != nil {
			return err
		}
		if value == "" {
			return fmt.Errorf("empty value for %s", name)
		}
		if err := store.SetSetting(ctx, name, value); err != nil {
			return fmt.Errorf("failed to store %s: %w", name, err)
		}
		fmt.Fprintf(stdout, "%s saved\n", name)
		return nil

	case "get":
		value, err := store.GetSetting(ctx, name)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", name, err)
		}
		fmt.Fprintln(stdout, value)
		return nil

	default:
		return errUsage
	}
}

// readValue prompts without echo on a terminal and reads one line otherwise,
// so values can also be piped in.
func readValue(stdin *os.File, stdout io.Writer, name string) (string, error) {
	fd := int(stdin.Fd())
	if !term.IsTerminal(fd) {
		line, err := bufio.NewReader(stdin).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", err
		}
		return strings.TrimSpace(line), nil
	}

	fmt.Fprintf(stdout, "Value for %s: ", name)
	raw, err := readPassword(fd)
	fmt.Fprintln(stdout)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(raw)), nil
}
