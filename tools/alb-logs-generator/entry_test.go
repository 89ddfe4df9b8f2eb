package main

import (
	"bufio"
	"bytes"
	"math/rand"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/go-faker/faker/v4"
	"github.com/klauspost/compress/gzip"
)

// streamKeyPattern is the key layout the forwarder derives stream names from.
var streamKeyPattern = regexp.MustCompile(`elasticloadbalancing/.+?/(\d{4})/(\d{2})/(\d{2})/([^_]+)`)

var testStart = time.Date(2025, 1, 30, 9, 50, 0, 0, time.UTC)

func seeded(seed int64) *rand.Rand {
	faker.SetRandomSource(faker.NewSafeSource(rand.NewSource(seed)))
	return rand.New(rand.NewSource(seed))
}

func renderLines(t *testing.T, entries []albLogEntry) []string {
	t.Helper()
	var buf bytes.Buffer
	if err := writeEntries(&buf, entries); err != nil {
		t.Fatalf("write entries: %v", err)
	}
	return strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
}

func TestGeneratedEntriesLookLikeALBLogs(t *testing.T) {
	lb := loadBalancers[0]
	entries := generateEntries(generatorOptions{Count: 20, Start: testStart, LoadBalancer: lb}, seeded(42))

	lines := renderLines(t, entries)
	if len(lines) != 20 {
		t.Fatalf("expected 20 lines, got %d", len(lines))
	}

	for i, line := range lines {
		fields := strings.Fields(line)
		if len(fields) < minRecordFields {
			t.Fatalf("line %d has %d fields: %q", i, len(fields), line)
		}
		if fields[0] != "http" && fields[0] != "https" {
			t.Errorf("line %d: unexpected type %q", i, fields[0])
		}
		if _, err := time.Parse(logTimeFormat, fields[1]); err != nil {
			t.Errorf("line %d: bad timestamp %q: %v", i, fields[1], err)
		}
		if fields[2] != lb.Name {
			t.Errorf("line %d: unexpected elb %q", i, fields[2])
		}
	}
}

func TestMalformedRatio(t *testing.T) {
	tests := []struct {
		name          string
		ratio         float64
		wantMalformed int
	}{
		{name: "none", ratio: 0, wantMalformed: 0},
		{name: "all", ratio: 1, wantMalformed: 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := generatorOptions{Count: 30, Start: testStart, LoadBalancer: loadBalancers[1], MalformedRatio: tt.ratio}
			malformed := 0
			for _, line := range renderLines(t, generateEntries(opts, seeded(7))) {
				n := len(strings.Fields(line))
				if n == 0 {
					t.Fatal("malformed lines must not be blank")
				}
				if n < minRecordFields {
					malformed++
				}
			}
			if malformed != tt.wantMalformed {
				t.Errorf("expected %d malformed lines, got %d", tt.wantMalformed, malformed)
			}
		})
	}
}

func TestGeneratorOptionsValidate(t *testing.T) {
	if err := (generatorOptions{Count: 1, MalformedRatio: 0.5}).validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := (generatorOptions{MalformedRatio: 1.5}).validate(); err == nil {
		t.Error("expected error for ratio above 1")
	}
	if err := (generatorOptions{Count: -1}).validate(); err == nil {
		t.Error("expected error for negative count")
	}
}

func TestResolveEntryCount(t *testing.T) {
	if n, err := resolveEntryCount(5, 0); err != nil || n != 5 {
		t.Errorf("explicit count: got %d, %v", n, err)
	}
	if n, err := resolveEntryCount(0, 10); err != nil || n != 3000 {
		t.Errorf("derived count: got %d, %v", n, err)
	}
	if _, err := resolveEntryCount(0, 0); err == nil {
		t.Error("expected error without count or rps")
	}
}

func TestObjectKeyFollowsDeliveryLayout(t *testing.T) {
	lb := loadBalancers[2]
	end := time.Date(2025, 1, 30, 9, 55, 0, 0, time.UTC)

	key := objectKey("alb-access-logs", lb, end, "10.0.0.1", rand.New(rand.NewSource(1)))

	wantPrefix := "alb-access-logs/AWSLogs/210987654321/elasticloadbalancing/us-west-2/2025/01/30/" +
		"210987654321_elasticloadbalancing_us-west-2_app.prod-auth.4d5e6f7a8b9c0d1e_20250130T0955Z_10.0.0.1_"
	if !strings.HasPrefix(key, wantPrefix) {
		t.Fatalf("unexpected key %q", key)
	}
	if !strings.HasSuffix(key, ".log.gz") {
		t.Errorf("key %q lacks .log.gz suffix", key)
	}

	m := streamKeyPattern.FindStringSubmatch(key)
	if m == nil {
		t.Fatalf("key %q does not match the stream routing layout", key)
	}
	if got := strings.Join(m[1:], "/"); got != "2025/01/30/210987654321" {
		t.Errorf("routing groups = %q", got)
	}
}

func TestObjectKeyWithoutPrefix(t *testing.T) {
	key := objectKey("", loadBalancers[0], testStart, "10.0.0.1", rand.New(rand.NewSource(1)))
	if !strings.HasPrefix(key, "AWSLogs/123456789012/") {
		t.Errorf("unexpected key %q", key)
	}
}

func TestWriteObjectRoundTrip(t *testing.T) {
	dir := t.TempDir()
	lb := loadBalancers[0]
	entries := generateEntries(generatorOptions{Count: 5, Start: testStart, LoadBalancer: lb}, seeded(3))
	key := objectKey("logs", lb, testStart, "10.1.2.3", rand.New(rand.NewSource(3)))

	if err := writeObject(dir, key, entries); err != nil {
		t.Fatalf("write object: %v", err)
	}

	f, err := os.Open(filepath.Join(dir, filepath.FromSlash(key)))
	if err != nil {
		t.Fatalf("open object: %v", err)
	}
	defer f.Close()

	zr, err := gzip.NewReader(f)
	if err != nil {
		t.Fatalf("gzip reader: %v", err)
	}
	defer zr.Close()

	var got []string
	scanner := bufio.NewScanner(zr)
	for scanner.Scan() {
		got = append(got, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("scan: %v", err)
	}

	if len(got) != len(entries) {
		t.Fatalf("expected %d lines, got %d", len(entries), len(got))
	}
	for i, entry := range entries {
		if got[i] != entry.String() {
			t.Errorf("line %d differs", i)
		}
	}
}
