// Command codebook-build distills the raw coupon dumps into the compact
// bloom codebook the checkout service uses as a definite-negative pre-check.
//
// A code counts as issued when it appears in at least two of the
// couponbaseN.gz dump files. The output is a serialized bloom filter
// readable by the discount package.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math/bits"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	pgzip "github.com/klauspost/pgzip"
	"golang.org/x/sync/errgroup"
)

const (
	perFileCapacity = 120_000_000
	falsePositive   = 0.001
	progressEvery   = 10_000_000
	minCodeLen      = 8
	maxCodeLen      = 10
)

func main() {
	var (
		dataDir  string
		outPath  string
		numFiles int
	)
	flag.StringVar(&dataDir, "data-dir", "data", "directory containing couponbaseN.gz files")
	flag.StringVar(&outPath, "out", "codebook.bloom", "output path for the coupon codebook")
	flag.IntVar(&numFiles, "files", 3, "number of couponbaseN.gz dump files")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := build(ctx, dataDir, outPath, numFiles); err != nil {
		slog.Error("codebook build failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	slog.Info("codebook build completed", slog.String("out", outPath))
}

func build(ctx context.Context, dataDir, outPath string, numFiles int) error {
	files := make([]string, numFiles)
	for i := range numFiles {
		files[i] = filepath.Join(dataDir, fmt.Sprintf("couponbase%d.gz", i+1))
		if _, err := os.Stat(files[i]); err != nil {
			return errors.Wrapf(err, "check dump file %s", files[i])
		}
	}

	// Pass 1: one bloom filter per dump, built concurrently. The dumps are
	// far too large to hold as sets.
	slog.Info("pass 1: building per-file filters", slog.Int("files", numFiles))
	filters := make([]*bloom.BloomFilter, numFiles)
	g, gctx := errgroup.WithContext(ctx)
	for i := range files {
		g.Go(func() error {
			filter := bloom.NewWithEstimates(perFileCapacity, falsePositive)
			n, err := scanDump(gctx, files[i], i+1, func(code string) {
				filter.AddString(code)
			})
			if err != nil {
				return err
			}
			slog.Info("pass 1 file done", slog.Int("file", i+1), slog.Uint64("codes", n))
			filters[i] = filter
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return errors.Wrap(err, "build per-file filters")
	}

	// Pass 2: re-stream each dump, keeping codes that some OTHER dump's
	// filter also saw. Membership is tracked as a file bitmask so the
	// per-file candidate maps can be merged cheaply.
	slog.Info("pass 2: collecting codes present in 2+ files")
	candidates := make([]map[string]uint, numFiles)
	g, gctx = errgroup.WithContext(ctx)
	for i := range files {
		g.Go(func() error {
			found := make(map[string]uint)
			bit := uint(1) << uint(i)
			n, err := scanDump(gctx, files[i], i+1, func(code string) {
				for j, f := range filters {
					if j != i && f.TestString(code) {
						found[code] |= bit
						break
					}
				}
			})
			if err != nil {
				return err
			}
			slog.Info("pass 2 file done",
				slog.Int("file", i+1),
				slog.Uint64("codes", n),
				slog.Int("candidates", len(found)),
			)
			candidates[i] = found
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return errors.Wrap(err, "collect candidates")
	}

	merged := make(map[string]uint)
	for _, m := range candidates {
		for code, mask := range m {
			merged[code] |= mask
		}
	}
	var issued []string
	for code, mask := range merged {
		if bits.OnesCount(mask) >= 2 {
			issued = append(issued, code)
		}
	}
	slog.Info("issued codes found", slog.Int("count", len(issued)))

	return writeCodebook(outPath, issued)
}

// scanDump streams one gzip-compressed dump, calling fn for every line whose
// length is plausible for a coupon code. Returns the number of codes seen.
func scanDump(ctx context.Context, path string, fileNum int, fn func(code string)) (uint64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, errors.Wrapf(err, "open %s", path)
	}
	defer func() { _ = f.Close() }()

	gz, err := pgzip.NewReader(f)
	if err != nil {
		return 0, errors.Wrapf(err, "gunzip %s", path)
	}
	defer func() { _ = gz.Close() }()

	var count uint64
	scanner := bufio.NewScanner(gz)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return count, err
		}
		code := scanner.Text()
		if len(code) < minCodeLen || len(code) > maxCodeLen {
			continue
		}
		count++
		if count%progressEvery == 0 {
			slog.Info("scan progress", slog.Int("file", fileNum), slog.Uint64("codes", count))
		}
		fn(code)
	}
	if err := scanner.Err(); err != nil {
		return count, errors.Wrapf(err, "scan %s", path)
	}
	return count, nil
}

// writeCodebook serializes the issued codes as a single bloom filter sized
// to the actual count.
func writeCodebook(path string, codes []string) error {
	out := bloom.NewWithEstimates(uint(max(len(codes), 1)), falsePositive)
	for _, code := range codes {
		out.AddString(code)
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create %s", path)
	}

	w := bufio.NewWriter(f)
	if _, err := out.WriteTo(w); err != nil {
		_ = f.Close()
		return errors.Wrap(err, "serialize codebook")
	}
	if err := w.Flush(); err != nil {
		_ = f.Close()
		return errors.Wrap(err, "flush codebook")
	}
	if err := f.Close(); err != nil {
		return errors.Wrapf(err, "close %s", path)
	}
	return nil
}
