package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/MrEthical07/consoleauth"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type loadtestOptions struct {
	users       int
	concurrency int
	authOps     int
	loginOps    int
}

func newLoadtestCmd(v *viper.Viper) *cobra.Command {
	var opts loadtestOptions

	cmd := &cobra.Command{
		Use:   "loadtest",
		Short: "Measure Authenticate and Login throughput against the configured Redis",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.users <= 0 || opts.concurrency <= 0 || opts.authOps < 0 || opts.loginOps < 0 {
				return errors.New("users and concurrency must be > 0, ops must be >= 0")
			}

			s := loadSettings(v)
			// The throttle would turn the login phase into a rate limit test.
			s.LoginThrottle = false

			logger := slog.New(slog.NewTextHandler(io.Discard, nil))
			svc, err := openService(cmd.Context(), s, logger)
			if err != nil {
				return err
			}
			defer svc.Close()

			out := cmd.OutOrStdout()
			if svc.inMemory {
				fmt.Fprintln(out, "using in-process redis")
			}
			return runLoadtest(cmd.Context(), out, svc.engine, opts)
		},
	}

	cmd.Flags().IntVar(&opts.users, "users", 100, "number of users to provision")
	cmd.Flags().IntVar(&opts.concurrency, "concurrency", 64, "number of concurrent workers")
	cmd.Flags().IntVar(&opts.authOps, "auth-ops", 100000, "Authenticate operations")
	cmd.Flags().IntVar(&opts.loginOps, "login-ops", 200, "Login operations (each runs the KDF)")
	return cmd
}

func runLoadtest(ctx context.Context, out io.Writer, engine *consoleauth.Engine, opts loadtestOptions) error {
	fmt.Fprintf(out, "provisioning %d users...\n", opts.users)
	startSeed := time.Now()
	tokens := make([]string, opts.users)
	for i := range tokens {
		username := fmt.Sprintf("load-%d", i)
		if _, err := engine.ProvisionUser(ctx, username, loadtestPassword(i), username); err != nil {
			return fmt.Errorf("provision %s: %w", username, err)
		}
		res, err := engine.Login(ctx, username, loadtestPassword(i))
		if err != nil {
			return fmt.Errorf("login %s: %w", username, err)
		}
		tokens[i] = res.AccessToken
	}
	fmt.Fprintf(out, "provisioned in %s\n", time.Since(startSeed).Round(time.Millisecond))

	authStats := runPhase(opts.authOps, opts.concurrency, func(r *rand.Rand) error {
		_, err := engine.Authenticate(ctx, tokens[r.Intn(len(tokens))])
		return err
	})
	loginStats := runPhase(opts.loginOps, opts.concurrency, func(r *rand.Rand) error {
		i := r.Intn(len(tokens))
		_, err := engine.Login(ctx, fmt.Sprintf("load-%d", i), loadtestPassword(i))
		return err
	})

	fmt.Fprintln(out, "---- results ----")
	printStats(out, "authenticate", authStats)
	printStats(out, "login", loginStats)
	return nil
}

func loadtestPassword(i int) string {
	return fmt.Sprintf("load-password-%d", i)
}

// runPhase runs op ops times across concurrency workers and collects
// per-call latencies.
func runPhase(ops, concurrency int, op func(r *rand.Rand) error) phaseStats {
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
				t0 := time.Now()
				err := op(r)
				d := time.Since(t0)
				if err != nil {
					atomic.AddInt64(&failures, 1)
				}
				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()
	return computeStats(time.Since(start), latencies, failures)
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

func printStats(out io.Writer, name string, s phaseStats) {
	fmt.Fprintf(out, "%s: ops=%d failures=%d total=%s ops/sec=%.0f p50=%s p95=%s p99=%s\n",
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
