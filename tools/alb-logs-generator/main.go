package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-faker/faker/v4"
	"github.com/klauspost/compress/gzip"
)

func main() {
	seedFlag := flag.Int64("seed", time.Now().UnixNano(), "seed for synthetic data generation")
	countFlag := flag.Int("count", 0, "number of log entries to emit (default: derived from --rps)")
	rpsFlag := flag.Float64("rps", defaultRPS, "average requests per second over the five-minute window")
	malformedFlag := flag.Float64("malformed", 0, "fraction of lines emitted with fewer than 12 fields")
	outFlag := flag.String("out", "", "write to this file instead of stdout; a .gz suffix gzips the output like ALB does")
	outDirFlag := flag.String("out-dir", "", "write a gzipped file under this directory at the S3 key ALB would use, and print the key")
	prefixFlag := flag.String("prefix", "alb-access-logs", "key prefix used with --out-dir")
	flag.Parse()

	if *outFlag != "" && *outDirFlag != "" {
		log.Fatal("--out and --out-dir are mutually exclusive")
	}

	entryCount, err := resolveEntryCount(*countFlag, *rpsFlag)
	if err != nil {
		log.Fatal(err)
	}

	faker.SetRandomSource(faker.NewSafeSource(rand.NewSource(*seedFlag)))
	dataRand := rand.New(rand.NewSource(*seedFlag))

	opts := generatorOptions{
		Count:          entryCount,
		Start:          time.Now().UTC().Add(-windowDuration),
		LoadBalancer:   randomChoice(dataRand, loadBalancers),
		MalformedRatio: *malformedFlag,
	}
	if err := opts.validate(); err != nil {
		log.Fatal(err)
	}

	entries := generateEntries(opts, dataRand)

	switch {
	case *outDirFlag != "":
		key := objectKey(*prefixFlag, opts.LoadBalancer, opts.Start.Add(windowDuration), nodeIP(dataRand), dataRand)
		if err := writeObject(*outDirFlag, key, entries); err != nil {
			log.Fatalf("failed to write log object: %v", err)
		}
		fmt.Println(key)
	case *outFlag != "":
		if err := writeFile(*outFlag, entries); err != nil {
			log.Fatalf("failed to write log file: %v", err)
		}
	default:
		if err := writeEntries(os.Stdout, entries); err != nil {
			log.Fatalf("failed to write log entries: %v", err)
		}
	}
}

// writeObject stores entries gzipped at dir/key, creating the key's directories.
func writeObject(dir, key string, entries []albLogEntry) error {
	path := filepath.Join(dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create key directories: %w", err)
	}
	return writeFile(path, entries)
}

func writeFile(path string, entries []albLogEntry) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	if !strings.HasSuffix(path, ".gz") {
		return writeEntries(f, entries)
	}

	zw := gzip.NewWriter(f)
	if err := writeEntries(zw, entries); err != nil {
		return err
	}
	return zw.Close()
}

func writeEntries(out io.Writer, entries []albLogEntry) error {
	writer := bufio.NewWriter(out)
	for _, entry := range entries {
		if _, err := writer.WriteString(entry.String()); err != nil {
			return err
		}
		if err := writer.WriteByte('\n'); err != nil {
			return err
		}
	}
	return writer.Flush()
}
