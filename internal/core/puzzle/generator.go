package puzzle

import (
	"bytes"
	"context"
	crand "crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"image/jpeg"
	"math/rand/v2"
	"runtime"
	"strconv"
	"time"

	"puzzle-rewards/internal/core/domain/entities"
	"puzzle-rewards/internal/core/domain/exceptions"
	"puzzle-rewards/internal/core/ports"
	"puzzle-rewards/internal/metrics"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

var tracer = otel.Tracer("puzzle-rewards/puzzle")

const (
	DefaultArtifactTTL = 24 * time.Hour
	DefaultTimeout     = 10 * time.Second
	jpegQuality        = 90
	imageContentType   = "image/jpeg"
)

type Config struct {
	CanvasSize    int
	MaxImageBytes int
	ArtifactTTL   time.Duration
	Timeout       time.Duration
	Concurrency   int
}

type Request struct {
	// KeyPrefix namespaces stored artifacts, e.g. "tasks/<task id>".
	KeyPrefix string
	Image     []byte
	GridSize  int
	// Rand drives the shuffle. Nil means a freshly seeded source.
	Rand *rand.Rand
}

type Result struct {
	Config   *entities.PuzzleConfig
	ImageURL string
}

// Generator turns an uploaded image into a shuffled puzzle. At most
// Config.Concurrency generations run at once; callers beyond that wait for a
// slot or for their context to end.
type Generator struct {
	slicer  *Slicer
	storage ports.ObjectStorage
	cfg     Config
	sem     *semaphore.Weighted
	now     func() time.Time
	log     *zap.Logger
}

func NewGenerator(storage ports.ObjectStorage, cfg Config, log *zap.Logger) *Generator {
	if storage == nil {
		log.Fatal("object storage is nil")
	}
	if cfg.ArtifactTTL <= 0 {
		cfg.ArtifactTTL = DefaultArtifactTTL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = runtime.NumCPU()
	}
	return &Generator{
		slicer:  NewSlicer(cfg.CanvasSize, cfg.MaxImageBytes),
		storage: storage,
		cfg:     cfg,
		sem:     semaphore.NewWeighted(int64(cfg.Concurrency)),
		now:     func() time.Time { return time.Now().UTC() },
		log:     log,
	}
}

// WithClock replaces the time source. Intended for tests.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

func (g *Generator) Generate(ctx context.Context, req Request) (res *Result, err error) {
	started := time.Now()
	gridLabel := strconv.Itoa(req.GridSize)

	ctx, span := tracer.Start(ctx, "puzzle.Generate")
	span.SetAttributes(
		attribute.Int("puzzle.grid_size", req.GridSize),
		attribute.Int("puzzle.image_bytes", len(req.Image)),
	)
	defer func() {
		outcome := "ok"
		if err != nil {
			outcome = "error"
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
		metrics.PuzzlesGeneratedTotal.WithLabelValues(gridLabel, outcome).Inc()
		metrics.PuzzleGenerationSeconds.WithLabelValues(gridLabel).Observe(time.Since(started).Seconds())
	}()

	if req.KeyPrefix == "" {
		return nil, exceptions.Validation("key_prefix", "must not be empty")
	}
	side, err := SideFor(req.GridSize)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, g.cfg.Timeout)
	defer cancel()

	if err := g.sem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("waiting for generation slot: %w", err)
	}
	defer g.sem.Release(1)

	img, format, err := g.slicer.Decode(req.Image)
	if err != nil {
		return nil, err
	}
	canvas := g.slicer.Normalize(img)
	pieces := Cut(canvas, side)
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("slicing image: %w", err)
	}

	hashes, err := hashPieces(ctx, pieces)
	if err != nil {
		return nil, fmt.Errorf("hashing pieces: %w", err)
	}
	seed := EstimateDifficulty(pieces)

	r := req.Rand
	if r == nil {
		r = NewRand()
	}
	shuffled := Shuffle(len(pieces), r)
	solution := make([]int, len(pieces))
	puzzlePieces := make([]entities.PuzzlePiece, len(pieces))
	for i, p := range pieces {
		solution[i] = p.Index
		puzzlePieces[i] = entities.PuzzlePiece{Index: p.Index, Hash: hashes[i]}
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, canvas, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("encoding normalized image: %w", err)
	}
	key := req.KeyPrefix + "/puzzle.jpg"
	url, err := g.storage.Put(ctx, key, buf.Bytes(), imageContentType)
	if err != nil {
		return nil, fmt.Errorf("storing puzzle image: %w", err)
	}

	now := g.now()
	cfg := entities.NewPuzzleConfig(req.GridSize, puzzlePieces, shuffled, seed, key, now, now.Add(g.cfg.ArtifactTTL), solution)

	g.log.Info("puzzle generated",
		zap.String("key", key),
		zap.String("source_format", format),
		zap.Int("grid_size", req.GridSize),
		zap.String("difficulty_seed", string(seed)),
		zap.Duration("took", time.Since(started)),
	)
	return &Result{Config: cfg, ImageURL: url}, nil
}

func hashPieces(ctx context.Context, pieces []Piece) ([]string, error) {
	hashes := make([]string, len(pieces))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(runtime.NumCPU())
	for i := range pieces {
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			sum := sha256.Sum256(pieces[i].Pix)
			hashes[i] = hex.EncodeToString(sum[:])
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return hashes, nil
}

// Shuffle returns a Fisher-Yates permutation of 0..n-1.
func Shuffle(n int, r *rand.Rand) []int {
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	for i := n - 1; i > 0; i-- {
		j := r.IntN(i + 1)
		order[i], order[j] = order[j], order[i]
	}
	return order
}

// NewRand returns a PCG source seeded from crypto/rand.
func NewRand() *rand.Rand {
	var seed [16]byte
	if _, err := crand.Read(seed[:]); err != nil {
		return rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0))
	}
	return rand.New(rand.NewPCG(binary.LittleEndian.Uint64(seed[:8]), binary.LittleEndian.Uint64(seed[8:])))
}
