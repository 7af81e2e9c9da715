package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/scholarcast/scholarcast/internal/adapters/media"
	"github.com/scholarcast/scholarcast/internal/config"
	"github.com/scholarcast/scholarcast/internal/core"
	"github.com/scholarcast/scholarcast/internal/directory"
	"github.com/scholarcast/scholarcast/internal/domain"
	"github.com/scholarcast/scholarcast/internal/identity"
	"github.com/scholarcast/scholarcast/internal/sync"
)

func main() {
	roomFlag := flag.String("room", "", "media-session room id to join")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Error().Err(err).Msg("failed to load config")
		os.Exit(1)
	}
	if *roomFlag == "" {
		log.Error().Msg("missing -room flag")
		os.Exit(1)
	}
	roomID := domain.RoomID(*roomFlag)

	user, err := domain.NewUser(cfg.Email, cfg.DisplayName)
	if err != nil {
		log.Error().Err(err).Msg("invalid user config")
		os.Exit(1)
	}

	var tokens core.TokenSource
	if cfg.AuthRefreshToken != "" {
		tokens = identity.NewSource(cfg.AuthAPIKey, cfg.AuthRefreshToken)
	} else {
		// Tooling escape hatch: a pre-issued token via environment.
		tokens = identity.StaticSource(os.Getenv("SCHOLARCAST_TOKEN"))
	}

	dir := directory.NewClient(cfg.BackendURL, user.Email, tokens)
	state := sync.NewRoomState()

	grant, err := sync.JoinRoom(ctx, dir, state, roomID, user.Email)
	if err != nil {
		log.Error().Err(err).Str("room", string(roomID)).Msg("failed to join room")
		os.Exit(1)
	}
	log.Info().Str("room", string(roomID)).Str("role", string(grant.Role)).Bool("can_publish", grant.CanPublish).Msg("grant issued")

	// Each (re)connect fetches a fresh grant so permission claims track
	// the current backend role.
	tokenFn := func(ctx context.Context) (string, error) {
		g, err := dir.RoomToken(ctx, roomID, user.Email, state.Role())
		if err != nil {
			return "", err
		}
		state.SetToken(g.Token)
		return g.Token, nil
	}

	session, err := media.Connect(ctx, cfg.MediaWSURL, user.Email, user.DisplayName, tokenFn)
	if err != nil {
		log.Error().Err(err).Msg("failed to connect media session")
		os.Exit(1)
	}

	synchronizer := sync.New(sync.Options{
		RoomID:               roomID,
		Email:                user.Email,
		Directory:            dir,
		Session:              session,
		State:                state,
		ParticipantsInterval: cfg.ParticipantsPoll,
		MetadataInterval:     cfg.MetadataPoll,
		ExtractsInterval:     cfg.ExtractsPoll,
	})

	if err := synchronizer.Run(ctx); err != nil {
		log.Error().Err(err).Msg("synchronizer error")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	sync.LeaveRoom(shutdownCtx, dir, state)
	session.Close()
	log.Info().Msg("agent exited gracefully")
}
