package main

import (
	"testing"

	"shogi/pkg/shogi"
)

// TestRunWriter_DrainsOnError feeds records into a writer whose schema file
// does not exist. The sends are unbuffered, so the test only completes if
// the writer keeps draining after the write fails.
func TestRunWriter_DrainsOnError(t *testing.T) {
	results := make(chan shogi.TrainingRecord)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 3; i++ {
			results <- shogi.TrainingRecord{GameID: "g"}
		}
		close(results)
	}()

	err := runWriter(t.TempDir()+"/out.parquet", "missing_schema.json", results, 1)
	if err == nil {
		t.Fatal("expected a schema load error")
	}
	<-done
}
