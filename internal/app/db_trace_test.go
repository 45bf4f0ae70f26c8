package app

import (
	"strings"
	"testing"
)

func TestFormatDBQueryForTrace(t *testing.T) {
	query := `
		UPDATE word_wars
		SET    status = $1
		WHERE  public_id = $2 AND status = $3
	`

	got := formatDBQueryForTrace(query)
	want := "UPDATE word_wars SET status = $1 WHERE public_id = $2 AND status = $3"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}

	if got := formatDBQueryForTrace("   "); got != "" {
		t.Fatalf("expected empty result, got %q", got)
	}

	long := "SELECT " + strings.Repeat("words_in_round, ", 100) + "rank FROM word_war_final_ranks"
	truncated := formatDBQueryForTrace(long)
	if len(truncated) != maxTracedQueryLength+3 {
		t.Fatalf("expected truncated length %d, got %d", maxTracedQueryLength+3, len(truncated))
	}
	if !strings.HasSuffix(truncated, "...") {
		t.Fatalf("expected ellipsis suffix, got %q", truncated[len(truncated)-10:])
	}
}
