// Command sealsession-loadtest measures sealed-cookie session throughput
// without any network dependency: reads against fresh cookies exercise the
// unseal path, reads against stale cookies exercise the full
// unseal-refresh-reseal path with an in-process provider stub.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/marcwael/sealsession"
)

type stubClient struct{}

func (stubClient) Refresh(_ context.Context, _ string) (*sealsession.TokenSet, error) {
	return &sealsession.TokenSet{
		AccessToken: "refreshed-access",
		Expiry:      time.Now().Add(time.Hour),
	}, nil
}

type stubFactory struct{}

func (stubFactory) Client(context.Context) (sealsession.Client, error) {
	return stubClient{}, nil
}

func main() {
	var (
		sessions    = flag.Int("sessions", 100000, "number of sealed cookies to seed")
		concurrency = flag.Int("concurrency", 256, "number of concurrent workers")
		ops         = flag.Int("ops", 200000, "operations per phase (read + refresh)")
	)
	flag.Parse()

	if *sessions <= 0 || *concurrency <= 0 || *ops <= 0 {
		fmt.Fprintln(os.Stderr, "sessions, concurrency, and ops must be > 0")
		os.Exit(2)
	}

	ctx := context.Background()

	cfg := sealsession.DefaultConfig()
	cfg.Cookie.Secret = []byte("loadtest-secret-loadtest-secret-")

	store, err := sealsession.New().
		WithConfig(cfg).
		WithClientFactory(stubFactory{}).
		Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "store build failed: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	fmt.Printf("seeding %d sealed cookies...\n", *sessions)
	startSeed := time.Now()
	fresh := seedCookies(ctx, store, *sessions, time.Now().Add(24*time.Hour))
	stale := seedCookies(ctx, store, *sessions, time.Now().Add(-time.Minute))
	fmt.Printf("seeded in %s\n", time.Since(startSeed).Round(time.Millisecond))

	readStats := runPhase(ctx, store, fresh, *ops, *concurrency)
	refreshStats := runPhase(ctx, store, stale, *ops, *concurrency)

	fmt.Println("---- results ----")
	printStats("read", readStats)
	printStats("refresh", refreshStats)
}

func seedCookies(ctx context.Context, store *sealsession.Store, n int, expiresAt time.Time) []*http.Cookie {
	cookies := make([]*http.Cookie, n)
	for i := 0; i < n; i++ {
		rec := httptest.NewRecorder()
		_, err := store.Save(ctx, rec, &sealsession.Session{
			User:         map[string]any{"sub": fmt.Sprintf("user-%d", i)},
			AccessToken:  fmt.Sprintf("access-%d", i),
			RefreshToken: fmt.Sprintf("refresh-%d", i),
			CreatedAt:    time.Now().Unix(),
			ExpiresAt:    expiresAt.Unix(),
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "seed save failed: %v\n", err)
			os.Exit(1)
		}
		cookies[i] = rec.Result().Cookies()[0]
	}
	return cookies
}

func runPhase(ctx context.Context, store *sealsession.Store, cookies []*http.Cookie, ops, concurrency int) phaseStats {
	var (
		wg        sync.WaitGroup
		cursor    int64
		failures  int64
		latencies = make([]time.Duration, 0, ops)
		mu        sync.Mutex
	)

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(worker)*7919))
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return
				}
				idx := r.Intn(len(cookies))

				req, _ := http.NewRequestWithContext(ctx, http.MethodGet, "/", nil)
				req.AddCookie(cookies[idx])
				rec := httptest.NewRecorder()

				t0 := time.Now()
				sess, err := store.Read(ctx, rec, req)
				d := time.Since(t0)
				if err != nil || sess == nil {
					atomic.AddInt64(&failures, 1)
				}

				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()
	total := time.Since(start)
	return computeStats(total, latencies, failures)
}

type phaseStats struct {
	total    time.Duration
	ops      int
	failures int64
	p50      time.Duration
	p95      time.Duration
	p99      time.Duration
	opsPerS  float64
}

func computeStats(total time.Duration, samples []time.Duration, failures int64) phaseStats {
	if len(samples) == 0 {
		return phaseStats{total: total}
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })
	return phaseStats{
		total:    total,
		ops:      len(samples),
		failures: failures,
		p50:      percentile(samples, 50),
		p95:      percentile(samples, 95),
		p99:      percentile(samples, 99),
		opsPerS:  float64(len(samples)) / total.Seconds(),
	}
}

func percentile(samples []time.Duration, p int) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	if p <= 0 {
		return samples[0]
	}
	if p >= 100 {
		return samples[len(samples)-1]
	}
	idx := (len(samples) - 1) * p / 100
	return samples[idx]
}

func printStats(name string, s phaseStats) {
	fmt.Printf("%s: ops=%d failures=%d total=%s ops/sec=%.0f p50=%s p95=%s p99=%s\n",
		name,
		s.ops,
		s.failures,
		s.total.Round(time.Millisecond),
		s.opsPerS,
		s.p50.Round(time.Microsecond),
		s.p95.Round(time.Microsecond),
		s.p99.Round(time.Microsecond),
	)
}
