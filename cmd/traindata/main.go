package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"shogi/pkg/shogi"
	"shogi/pkg/usi"
)

func main() {
	inputDir := flag.String("input", "kif", "input directory for KIF files")
	outputPath := flag.String("output", "training.parquet", "output parquet file")
	schemaPath := flag.String("schema", "schema/parquet_schema.json", "parquet schema file")
	enginePath := flag.String("engine", "", "USI engine binary; empty disables evaluation")
	millis := flag.Int("millis", 200, "movetime per evaluation in milliseconds")
	workers := flag.Int("workers", 1, "number of parallel workers")
	perEvalTimeout := flag.Duration("timeout", 10*time.Second, "timeout per evaluation")
	flag.Parse()

	files, err := shogi.CollectKIF(*inputDir)
	if err != nil {
		fatal(err)
	}
	if len(files) == 0 {
		fatal(fmt.Errorf("no .kif files found in %s", *inputDir))
	}

	numWorkers := *workers
	if numWorkers <= 0 {
		numWorkers = 1
	}
	if numWorkers > len(files) {
		numWorkers = len(files)
	}
	if dir := filepath.Dir(*outputPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			fatal(err)
		}
	}

	jobs := make(chan string)
	results := make(chan shogi.TrainingRecord, numWorkers)
	writeErr := make(chan error, 1)
	var writeWg sync.WaitGroup
	writeWg.Add(1)
	go func() {
		defer writeWg.Done()
		writeErr <- runWriter(*outputPath, *schemaPath, results, int64(numWorkers))
	}()

	sessions := make([]*usi.Session, numWorkers)
	if *enginePath != "" {
		for i := 0; i < numWorkers; i++ {
			session, err := usi.StartSession(context.Background(), *enginePath)
			if err != nil {
				fatal(err)
			}
			if err := session.Handshake(context.Background(), map[string]string{"Threads": "1"}); err != nil {
				session.Close()
				fatal(err)
			}
			sessions[i] = session
			defer session.Close()
		}
	}

	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		session := sessions[i]
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range jobs {
				record, err := buildRecord(path, session, *millis, *perEvalTimeout)
				if err != nil {
					fmt.Fprintf(os.Stderr, "failed to process %s: %v\n", path, err)
					continue
				}
				results <- record
			}
		}()
	}

	for _, path := range files {
		jobs <- path
	}
	close(jobs)
	wg.Wait()
	close(results)
	writeWg.Wait()
	if err := <-writeErr; err != nil {
		fatal(err)
	}
}

// runWriter writes records to the parquet file. On a write error it keeps
// draining the channel so the workers and the job feeder never block on a
// dead sink; the error surfaces once the channel closes.
func runWriter(outputPath, schemaPath string, results <-chan shogi.TrainingRecord, parallel int64) error {
	err := shogi.WriteParquet(outputPath, schemaPath, results, parallel)
	if err != nil {
		for range results {
		}
	}
	return err
}

// buildRecord replays one KIF file into a training record. With a session it
// also attaches an engine score per ply.
func buildRecord(path string, session *usi.Session, millis int, perEvalTimeout time.Duration) (shogi.TrainingRecord, error) {
	game, err := shogi.LoadKIF(path)
	if err != nil {
		return shogi.TrainingRecord{}, err
	}
	timeline, err := game.Timeline()
	if err != nil {
		return shogi.TrainingRecord{}, err
	}

	record := shogi.TrainingRecord{
		GameID:      uuid.NewString(),
		SenteName:   game.Players.SenteName,
		SenteRating: int32(game.Players.SenteRating),
		GoteName:    game.Players.GoteName,
		GoteRating:  int32(game.Players.GoteRating),
		Result:      game.Result,
		WinReason:   game.WinReason,
		MoveCount:   int32(len(timeline.Moves)),
		FinalSFEN:   shogi.FormatSFEN(timeline.At(timeline.Len()-1), timeline.Len()),
		Plies:       make([]shogi.PlyRecord, 0, len(timeline.Moves)),
	}

	for i, token := range timeline.Moves {
		before := timeline.At(i)
		ply := shogi.PlyRecord{
			Ply:     int32(i + 1),
			MoveUSI: token,
		}
		if m, err := shogi.ParseMove(token); err == nil {
			ply.LabelJP = shogi.MoveLabel(m, before.Board(), before.Turn())
			if facts, err := shogi.ComputeFacts(before, m); err == nil {
				ply.IsDrop = facts.Drop
				ply.IsCapture = facts.Capture
				ply.IsPromote = facts.Promotion
			}
		}
		if session != nil {
			sfen := shogi.FormatSFEN(timeline.At(i+1), i+2)
			ctx, cancel := context.WithTimeout(context.Background(), perEvalTimeout)
			score, _, err := session.Evaluate(ctx, sfen, millis)
			cancel()
			if err != nil {
				return shogi.TrainingRecord{}, fmt.Errorf("evaluate ply %d: %w", i+1, err)
			}
			ply.ScoreType = score.Kind
			ply.ScoreValue = int32(score.Value)
		}
		record.Plies = append(record.Plies, ply)
	}
	return record, nil
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
