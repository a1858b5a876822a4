package gitlog

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
)

func TestParseLog(t *testing.T) {
	t.Parallel()

	extractor := NewExtractor(zap.NewNop().Sugar())

	out := "Jane Doe|jane@example.org|2025-01-27 10:30:45 -0800|abc123\n" +
		"this line is malformed\n" +
		"\n" +
		"John Roe|john@example.org|2025-01-26 09:00:00 +0000|def456"

	records := extractor.parseLog(out)
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}

	first := records[0]
	if first.AuthorName != "Jane Doe" || first.AuthorEmail != "jane@example.org" {
		t.Fatalf("unexpected first record author: %+v", first)
	}
	if first.RawDate != "2025-01-27 10:30:45 -0800" || first.Hash != "abc123" {
		t.Fatalf("unexpected first record date or hash: %+v", first)
	}
	if records[1].Hash != "def456" {
		t.Fatalf("unexpected second record hash: %s", records[1].Hash)
	}
}

func TestParseLogEmpty(t *testing.T) {
	t.Parallel()

	extractor := NewExtractor(zap.NewNop().Sugar())
	if records := extractor.parseLog(""); len(records) != 0 {
		t.Fatalf("expected no records from empty output, got %d", len(records))
	}
}

func TestExtractNotARepository(t *testing.T) {
	t.Parallel()

	extractor := NewExtractor(zap.NewNop().Sugar())
	_, err := extractor.Extract(context.Background(), t.TempDir())
	if err == nil {
		t.Fatal("expected error extracting from a non-repository")
	}
	if !errors.Is(err, ErrNotARepository) {
		t.Fatalf("expected ErrNotARepository, got: %s", err.Error())
	}
}
