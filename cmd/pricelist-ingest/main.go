// Command pricelist-ingest loads supplier price lists into the product
// catalog. Suppliers ship gzipped semicolon-separated files with one product
// per line; files are scanned in parallel and merged with a bloom filter so
// a SKU repeated across lists is only written once, first list wins.
package main

import (
	"bufio"
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	pgzip "github.com/klauspost/pgzip"
	"golang.org/x/sync/errgroup"

	"github.com/sharmuse/ideal-collor-os/internal/domain/catalog"
	"github.com/sharmuse/ideal-collor-os/internal/domain/order"
	"github.com/sharmuse/ideal-collor-os/internal/repository"
)

const (
	bloomCapacity = 1_000_000
	bloomFPR      = 0.001
	progressEvery = 50_000
)

// record is one parsed price list line:
// type;name;color_code;unit;avg_consumption;cost_unit;price_unit
type record struct {
	product catalog.Product
	key     string
}

func main() {
	var (
		dataDir     string
		databaseURL string
	)

	flag.StringVar(&dataDir, "data-dir", "data", "directory containing *.csv.gz price list files")
	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, dataDir, databaseURL); err != nil {
		slog.Error("price list ingest failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("price list ingest completed successfully")
}

func run(ctx context.Context, dataDir, databaseURL string) error {
	files, err := filepath.Glob(filepath.Join(dataDir, "*.csv.gz"))
	if err != nil {
		return errors.Wrap(err, "list price list files")
	}
	if len(files) == 0 {
		return errors.Errorf("no *.csv.gz files in %s", dataDir)
	}

	slog.Info("scanning price lists", slog.Int("files", len(files)))

	// Parse all files concurrently; the order of `results` follows the
	// (sorted) glob order so the merge below is deterministic.
	results := make([][]record, len(files))
	g, gctx := errgroup.WithContext(ctx)
	for i, f := range files {
		g.Go(parseFile(gctx, i, f, results))
	}
	if err := g.Wait(); err != nil {
		return err
	}

	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	products := repository.NewProductRepository(pool)

	// Merge pass: the bloom filter drops SKUs already written, so a product
	// repeated across supplier lists keeps the first list's prices. A false
	// positive skips a fresh SKU, which the low FPR makes acceptable for
	// price list loads.
	filter := bloom.NewWithEstimates(bloomCapacity, bloomFPR)
	var written, skipped int
	for _, recs := range results {
		for i := range recs {
			if err := ctx.Err(); err != nil {
				return err
			}
			if filter.TestAndAddString(recs[i].key) {
				skipped++
				continue
			}
			if err := products.Upsert(ctx, &recs[i].product); err != nil {
				return errors.Wrapf(err, "upsert product %q", recs[i].product.Name)
			}
			written++
		}
	}

	slog.Info("merge complete", slog.Int("written", written), slog.Int("duplicates", skipped))
	return nil
}

func parseFile(ctx context.Context, idx int, path string, results [][]record) func() error {
	return func() error {
		var recs []record
		var lines int

		err := streamGzFile(ctx, path, func(line string) {
			lines++
			if lines%progressEvery == 0 {
				slog.Info("scan progress", slog.String("file", filepath.Base(path)), slog.Int("lines", lines))
			}
			r, ok := parseLine(line)
			if !ok {
				return
			}
			recs = append(recs, r)
		})
		if err != nil {
			return errors.Wrapf(err, "scan %s", path)
		}

		slog.Info("scan complete",
			slog.String("file", filepath.Base(path)),
			slog.Int("lines", lines),
			slog.Int("products", len(recs)),
		)

		results[idx] = recs
		return nil
	}
}

func parseLine(line string) (record, bool) {
	fields := strings.Split(line, ";")
	if len(fields) < 7 {
		return record{}, false
	}
	for i := range fields {
		fields[i] = strings.Trim(strings.TrimSpace(fields[i]), `"`)
	}
	name := fields[1]
	if name == "" || strings.EqualFold(name, "name") {
		// Empty and header lines.
		return record{}, false
	}

	p := catalog.Product{
		Type:           fields[0],
		Name:           name,
		ColorCode:      fields[2],
		Unit:           fields[3],
		AvgConsumption: order.ParseAmount(fields[4]),
		Cost:           order.ParseAmount(fields[5]),
		Price:          order.ParseAmount(fields[6]),
	}
	return record{product: p, key: name + "\x00" + p.ColorCode}, true
}

// streamGzFile opens a gzip-compressed file and calls fn for each line.
func streamGzFile(ctx context.Context, path string, fn func(line string)) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "open %s", path)
	}
	defer func() { _ = f.Close() }()

	gz, err := pgzip.NewReader(f)
	if err != nil {
		return errors.Wrapf(err, "create gzip reader for %s", path)
	}
	defer func() { _ = gz.Close() }()

	scanner := bufio.NewScanner(gz)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		fn(scanner.Text())
	}

	if err := scanner.Err(); err != nil {
		return errors.Wrapf(err, "scan %s", path)
	}

	return nil
}
