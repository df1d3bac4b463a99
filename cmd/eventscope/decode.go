package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"eventScope/internal/config"
	"eventScope/internal/decode"
	"eventScope/internal/model"
	"eventScope/internal/schema"
	"eventScope/internal/storage"
	"eventScope/internal/storage/postgres"
)

const decodeFlushSize = 500

func runDecode(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadDecode(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.In == "" {
		return fmt.Errorf("input path is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry, err := schema.Load(cfg.ABIFiles)
	if err != nil {
		return err
	}
	decoder := decode.NewDecoder(registry)

	var sink storage.EventSink
	if cfg.PGDSN != "" {
		store, err := postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer store.Close()
		if err := store.EnsureSchema(ctx); err != nil {
			return err
		}
		sink = store
	} else {
		if cfg.Out == "" {
			return fmt.Errorf("output path is required")
		}
		sink = storage.NewJsonlEventSink(cfg.Out, cfg.Errors)
	}

	inputFile, err := os.Open(cfg.In)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer inputFile.Close()

	logger.Info("decode start",
		zap.String("in", cfg.In),
		zap.String("out", cfg.Out),
		zap.String("errors", cfg.Errors),
		zap.Int("events", registry.Len()),
		zap.Bool("postgres", cfg.PGDSN != ""),
	)

	scanner := bufio.NewScanner(inputFile)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 10*1024*1024)

	events := make([]model.DecodedEvent, 0, decodeFlushSize)
	decodeErrs := make([]model.DecodeError, 0, decodeFlushSize)
	flush := func() error {
		if err := sink.PutEventBatch(events); err != nil {
			return fmt.Errorf("store events: %w", err)
		}
		if err := sink.PutErrorBatch(decodeErrs); err != nil {
			return fmt.Errorf("store decode errors: %w", err)
		}
		events = events[:0]
		decodeErrs = decodeErrs[:0]
		return nil
	}

	var total, decoded, skipped, failed int
	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		total++

		var record model.LogRecord
		if err := json.Unmarshal(line, &record); err != nil {
			failed++
			decodeErrs = append(decodeErrs, model.DecodeError{Error: err.Error()})
			continue
		}

		if len(record.Topics) == 0 || !decoder.CanDecode(record.Topics[0]) {
			skipped++
			continue
		}

		event, err := decoder.Decode(record)
		if err != nil {
			failed++
			decodeErrs = append(decodeErrs, model.NewDecodeError(record, err))
			continue
		}
		events = append(events, *event)
		decoded++

		if len(events)+len(decodeErrs) >= decodeFlushSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scan input: %w", err)
	}
	if err := flush(); err != nil {
		return err
	}

	logger.Info("decode complete",
		zap.Int("total", total),
		zap.Int("decoded", decoded),
		zap.Int("skipped", skipped),
		zap.Int("failed", failed),
	)

	return nil
}
