package usi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
)

// Score represents a USI evaluation score from the side to move.
type Score struct {
	Kind  string // "cp" or "mate"
	Value int
}

// String returns a stable text representation for comments/logging.
func (s Score) String() string {
	if s.Kind == "cp" {
		return fmt.Sprintf("cp %d", s.Value)
	}
	if s.Kind == "mate" {
		return fmt.Sprintf("mate %d", s.Value)
	}
	return "unknown"
}

// Candidate is one principal variation from a MultiPV search.
type Candidate struct {
	Rank  int // 1-based multipv index
	Move  string
	Score Score
	Depth int
	PV    []string
}

// Session manages a USI engine session and event stream.
type Session struct {
	engine *Engine
	reader *Reader
	events chan Event
	errCh  chan error
}

// StartSession launches a USI engine and starts a reader goroutine.
func StartSession(ctx context.Context, path string, args ...string) (*Session, error) {
	engine, err := Start(ctx, path, args...)
	if err != nil {
		return nil, err
	}
	reader := engine.Reader()
	events := make(chan Event, 64)
	errCh := make(chan error, 1)
	go func() {
		defer close(events)
		for {
			event, err := reader.Next()
			if err != nil {
				select {
				case errCh <- err:
				default:
				}
				return
			}
			events <- event
		}
	}()
	return &Session{engine: engine, reader: reader, events: events, errCh: errCh}, nil
}

// Close terminates the engine process.
func (s *Session) Close() error {
	if s == nil || s.engine == nil {
		return nil
	}
	return s.engine.Close()
}

// Stderr returns the engine's stderr reader for diagnostics.
func (s *Session) Stderr() io.Reader {
	if s == nil || s.engine == nil {
		return nil
	}
	return s.engine.Stderr()
}

// Handshake runs the standard USI handshake and applies the given options
// before isready. Option order is fixed by name so engine logs stay diffable.
func (s *Session) Handshake(ctx context.Context, options map[string]string) error {
	if err := s.engine.Send("usi"); err != nil {
		return err
	}
	if _, err := s.waitForEvent(ctx, EventUSIOK); err != nil {
		return err
	}
	names := make([]string, 0, len(options))
	for name := range options {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		cmd := fmt.Sprintf("setoption name %s value %s", name, options[name])
		if err := s.engine.Send(cmd); err != nil {
			return err
		}
	}
	if err := s.engine.Send("isready"); err != nil {
		return err
	}
	_, err := s.waitForEvent(ctx, EventReadyOK)
	return err
}

// Evaluate runs a bounded search for the given SFEN position and returns the
// last score, normalized to Sente's point of view.
func (s *Session) Evaluate(ctx context.Context, sfen string, moveTimeMs int) (Score, string, error) {
	if err := s.engine.Send("position sfen " + sfen); err != nil {
		return Score{}, "", err
	}
	if moveTimeMs <= 0 {
		moveTimeMs = 1
	}
	if err := s.engine.Send(fmt.Sprintf("go movetime %d", moveTimeMs)); err != nil {
		return Score{}, "", err
	}

	var score Score
	haveScore := false
	for {
		event, err := s.nextEvent(ctx)
		if err != nil {
			return Score{}, "", err
		}
		switch event.Type {
		case EventInfo:
			if info, ok := parseInfo(event.Raw); ok && info.haveScore {
				score = info.score
				haveScore = true
			}
		case EventBestMove:
			if !haveScore {
				return Score{}, event.Move, errors.New("no score in engine output")
			}
			if sfenTurn(sfen) == "w" {
				score = flipScore(score)
			}
			return score, event.Move, nil
		}
	}
}

// EvaluateCandidates runs a MultiPV search and returns up to multiPV ranked
// candidate lines, scores normalized to Sente's point of view. The MultiPV
// option is reset to 1 afterwards so later Evaluate calls are unaffected.
func (s *Session) EvaluateCandidates(ctx context.Context, sfen string, moveTimeMs, multiPV int) ([]Candidate, error) {
	if multiPV < 1 {
		multiPV = 1
	}
	if err := s.engine.Send(fmt.Sprintf("setoption name MultiPV value %d", multiPV)); err != nil {
		return nil, err
	}
	if err := s.engine.Send("position sfen " + sfen); err != nil {
		return nil, err
	}
	if moveTimeMs <= 0 {
		moveTimeMs = 1
	}
	if err := s.engine.Send(fmt.Sprintf("go movetime %d", moveTimeMs)); err != nil {
		return nil, err
	}

	flip := sfenTurn(sfen) == "w"
	byRank := map[int]Candidate{}
	for {
		event, err := s.nextEvent(ctx)
		if err != nil {
			return nil, err
		}
		switch event.Type {
		case EventInfo:
			info, ok := parseInfo(event.Raw)
			if !ok || !info.haveScore || len(info.pv) == 0 {
				continue
			}
			rank := info.multiPV
			if rank == 0 {
				rank = 1
			}
			// Later lines at the same rank supersede earlier, shallower ones.
			byRank[rank] = Candidate{
				Rank:  rank,
				Move:  info.pv[0],
				Score: info.score,
				Depth: info.depth,
				PV:    info.pv,
			}
		case EventBestMove:
			if err := s.engine.Send("setoption name MultiPV value 1"); err != nil {
				return nil, err
			}
			out := make([]Candidate, 0, len(byRank))
			for _, c := range byRank {
				if flip {
					c.Score = flipScore(c.Score)
				}
				out = append(out, c)
			}
			sort.Slice(out, func(i, j int) bool { return out[i].Rank < out[j].Rank })
			if len(out) == 0 {
				return nil, errors.New("no candidate lines in engine output")
			}
			return out, nil
		}
	}
}

func flipScore(score Score) Score {
	score.Value = -score.Value
	return score
}

func sfenTurn(sfen string) string {
	if fields := strings.Fields(sfen); len(fields) >= 2 {
		return fields[1]
	}
	return "b"
}

func (s *Session) waitForEvent(ctx context.Context, want EventType) (Event, error) {
	for {
		event, err := s.nextEvent(ctx)
		if err != nil {
			return Event{}, err
		}
		if event.Type == want {
			return event, nil
		}
	}
}

func (s *Session) nextEvent(ctx context.Context) (Event, error) {
	select {
	case <-ctx.Done():
		return Event{}, ctx.Err()
	case err := <-s.errCh:
		if err == nil {
			return Event{}, errors.New("engine stdout closed")
		}
		return Event{}, err
	case event, ok := <-s.events:
		if !ok {
			return Event{}, errors.New("engine stdout closed")
		}
		return event, nil
	}
}

type infoLine struct {
	depth     int
	multiPV   int
	score     Score
	haveScore bool
	pv        []string
}

func parseInfo(line string) (infoLine, bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 || fields[0] != "info" {
		return infoLine{}, false
	}
	var info infoLine
	for i := 1; i < len(fields); i++ {
		switch fields[i] {
		case "depth":
			if i+1 < len(fields) {
				info.depth, _ = strconv.Atoi(fields[i+1])
				i++
			}
		case "multipv":
			if i+1 < len(fields) {
				info.multiPV, _ = strconv.Atoi(fields[i+1])
				i++
			}
		case "score":
			if i+2 < len(fields) {
				kind := fields[i+1]
				value, err := strconv.Atoi(fields[i+2])
				if err == nil && (kind == "cp" || kind == "mate") {
					info.score = Score{Kind: kind, Value: value}
					info.haveScore = true
				}
				i += 2
			}
		case "pv":
			info.pv = fields[i+1:]
			i = len(fields)
		}
	}
	return info, true
}
