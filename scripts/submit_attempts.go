package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"

	puzzlev1 "puzzle-rewards/pkg/grpc/puzzlev1"
)

type stats struct {
	sent     uint64
	ok       uint64
	correct  uint64
	rewards  uint64
	errCount uint64
	errCodes map[codes.Code]uint64
	mu       sync.Mutex
}

func main() {
	addr := flag.String("addr", "127.0.0.1:50051", "gRPC address")
	taskID := flag.String("task", "", "task id")
	userID := flag.String("user", "", "user id; empty means a fresh user per request")
	orderFlag := flag.String("order", "", "submitted piece order, comma separated (e.g. 0,1,2,3,4,5,6,7,8)")
	elapsed := flag.Duration("elapsed", 30*time.Second, "reported solve time")
	workers := flag.Int("workers", 2, "number of concurrent workers")
	count := flag.Int("count", 2, "total requests")
	delay := flag.Duration("delay", 0, "delay between requests per worker (e.g. 10ms)")
	verbose := flag.Bool("verbose", false, "log every request")
	checkDB := flag.Bool("check-db", false, "poll db for attempt counter changes")
	poll := flag.Duration("poll", time.Second, "db poll interval (e.g. 200ms)")
	flag.Parse()

	order, err := parseOrder(*orderFlag)
	if *taskID == "" || err != nil {
		if err != nil {
			fmt.Printf("bad -order: %v\n", err)
		}
		fmt.Println("usage: go run ./scripts/submit_attempts.go --task <id> --order 0,1,2,... [--user <id>] [--workers 2] [--count 100] [--elapsed 30s] [--delay 0ms] [--check-db] [--poll 1s]")
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)
	go func() {
		<-sig
		cancel()
	}()

	opts := append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, puzzlev1.DialOptions()...)
	conn, err := grpc.NewClient(*addr, opts...)
	if err != nil {
		fmt.Printf("grpc dial failed: %v\n", err)
		os.Exit(1)
	}
	defer conn.Close()

	client := puzzlev1.NewPuzzleServiceClient(conn)

	var st stats
	st.errCodes = make(map[codes.Code]uint64)

	var watcher *dbWatcher
	if *checkDB {
		watcher, err = startDBWatcher(ctx, *taskID, *poll)
		if err != nil {
			fmt.Printf("db watcher failed: %v\n", err)
			os.Exit(1)
		}
	}

	run := func(id int) {
		for {
			if n := atomic.AddUint64(&st.sent, 1); n > uint64(*count) {
				return
			}

			user := *userID
			if user == "" {
				user = uuid.NewString()
			}
			resp, err := client.SubmitAttempt(ctx, &puzzlev1.SubmitAttemptRequest{
				TaskId:    *taskID,
				UserId:    user,
				Order:     order,
				ElapsedMs: elapsed.Milliseconds(),
			})
			if err != nil {
				code := status.Code(err)
				atomic.AddUint64(&st.errCount, 1)
				st.mu.Lock()
				st.errCodes[code]++
				st.mu.Unlock()
				if *verbose || code != codes.AlreadyExists {
					fmt.Printf("[W%d] error code=%s msg=%s\n", id, code.String(), err.Error())
				}
			} else {
				atomic.AddUint64(&st.ok, 1)
				if resp.IsCorrect {
					atomic.AddUint64(&st.correct, 1)
				}
				if resp.Reward != nil {
					atomic.AddUint64(&st.rewards, 1)
				}
				if *verbose {
					fmt.Printf("[W%d] ok correct=%v score=%d\n", id, resp.IsCorrect, resp.Score)
				}
			}

			if *delay > 0 {
				select {
				case <-time.After(*delay):
				case <-ctx.Done():
					return
				}
			}

			select {
			case <-ctx.Done():
				return
			default:
			}
		}
	}

	var wg sync.WaitGroup
	for i := 0; i < *workers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			run(id + 1)
		}(i)
	}
	wg.Wait()

	if watcher != nil {
		watcher.Stop()
	}

	st.mu.Lock()
	fmt.Printf("summary sent=%d ok=%d correct=%d rewards=%d errors=%d error_codes=%v\n",
		min(st.sent, uint64(*count)), st.ok, st.correct, st.rewards, st.errCount, st.errCodes)
	st.mu.Unlock()
}

func parseOrder(raw string) ([]int32, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, fmt.Errorf("order is required")
	}
	parts := strings.Split(raw, ",")
	order := make([]int32, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, err
		}
		order = append(order, int32(v))
	}
	return order, nil
}

type dbWatcher struct {
	pool            *pgxpool.Pool
	taskID          string
	lastAttempts    int
	lastConversions int
	changes         int
	cancel          context.CancelFunc
	done            chan struct{}
}

func startDBWatcher(ctx context.Context, taskID string, poll time.Duration) (*dbWatcher, error) {
	pool, err := pgxpool.New(ctx, buildDSN())
	if err != nil {
		return nil, err
	}

	wctx, cancel := context.WithCancel(ctx)
	w := &dbWatcher{
		pool:   pool,
		taskID: taskID,
		cancel: cancel,
		done:   make(chan struct{}),
	}

	go w.loop(wctx, poll)
	return w, nil
}

func (w *dbWatcher) loop(ctx context.Context, poll time.Duration) {
	ticker := time.NewTicker(poll)
	defer ticker.Stop()
	defer close(w.done)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			var attempts, conversions int
			err := w.pool.QueryRow(ctx,
				`SELECT attempt_count, conversion_count FROM tasks WHERE id = $1`,
				w.taskID,
			).Scan(&attempts, &conversions)
			if err != nil {
				continue
			}
			if attempts != w.lastAttempts || conversions != w.lastConversions {
				w.changes++
				fmt.Printf("db-watch change: attempts %d -> %d, conversions %d -> %d\n",
					w.lastAttempts, attempts, w.lastConversions, conversions)
			}
			w.lastAttempts = attempts
			w.lastConversions = conversions
		}
	}
}

func (w *dbWatcher) Stop() {
	w.cancel()
	<-w.done
	w.pool.Close()
	fmt.Printf("db-watch summary attempts=%d conversions=%d changes=%d\n",
		w.lastAttempts,
		w.lastConversions,
		w.changes,
	)
}

func buildDSN() string {
	db := getEnv("POSTGRES_DB", "puzzle_rewards")
	user := getEnv("POSTGRES_USER", "puzzle_rewards")
	pass := getEnv("POSTGRES_PASSWORD", "puzzle_rewards")
	host := getEnv("POSTGRES_HOST", "localhost")
	port := getEnv("POSTGRES_PORT", "5432")
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", user, pass, host, port, db)
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
