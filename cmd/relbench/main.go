package main

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/avast/retry-go"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/d60-Lab/tieba/config"
	"github.com/d60-Lab/tieba/internal/model"
	"github.com/d60-Lab/tieba/internal/repository"
	"github.com/d60-Lab/tieba/internal/service"
	"github.com/d60-Lab/tieba/pkg/auth"
	"github.com/d60-Lab/tieba/pkg/database"
	"github.com/d60-Lab/tieba/pkg/logger"
)

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

func envInt(key string, def int) int {
	if s := os.Getenv(key); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return def
}

// withRetry 只重试存储不可用，领域错误直接返回。
// 首次提交后连接断开时重试会得到 ErrAlreadyExists，说明已经写入，按成功处理。
func withRetry(ctx context.Context, fn func() error) error {
	attempt := 0
	return retry.Do(func() error {
		attempt++
		err := fn()
		if attempt > 1 && errors.Is(err, repository.ErrAlreadyExists) {
			return nil
		}
		return err
	},
		retry.Context(ctx),
		retry.Attempts(3),
		retry.Delay(20*time.Millisecond),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool { return errors.Is(err, repository.ErrStorageUnavailable) }),
		retry.OnRetry(func(n uint, err error) {
			logger.Warn("relbench retry", zap.Uint("attempt", n+1), zap.Error(err))
		}),
	)
}

// collectLatency 持续读取通知投递耗时，done 关闭后读完剩余采样再返回
func collectLatency(src <-chan time.Duration, done <-chan struct{}) <-chan []time.Duration {
	out := make(chan []time.Duration, 1)
	go func() {
		var xs []time.Duration
		for {
			select {
			case d := <-src:
				xs = append(xs, d)
			case <-done:
				for {
					select {
					case d := <-src:
						xs = append(xs, d)
					default:
						out <- xs
						return
					}
				}
			}
		}
	}()
	return out
}

func pct(vs []time.Duration, p float64) time.Duration {
	if len(vs) == 0 {
		return 0
	}
	xs := append([]time.Duration(nil), vs...)
	sort.Slice(xs, func(i, j int) bool { return xs[i] < xs[j] })
	k := int(math.Ceil(p*float64(len(xs)))) - 1
	if k < 0 {
		k = 0
	}
	if k >= len(xs) {
		k = len(xs) - 1
	}
	return xs[k]
}

func main() {
	cfg := must(config.Load())
	_ = logger.Init(cfg.Log)
	db := must(database.InitDB(cfg))
	defer func() { _ = database.Close(db) }()

	N := envInt("N", 2000)
	CONC := envInt("CONC", 8)
	PAGE := envInt("PAGE", 50)

	dispatcher := service.NewNotificationDispatcher(repository.NewNotificationRepository(db), nil, N*3+16)
	stop := dispatcher.Start(4)
	collectDone := make(chan struct{})
	notifyLat := collectLatency(dispatcher.Metrics(), collectDone)
	svc := service.New(db, dispatcher, auth.NewManager(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.Expire))
	counters := repository.NewCounterRepository(db)
	followRepo := repository.NewFollowRepository(db)

	ctx := context.Background()

	// u0 是大 V：所有人关注他并给他的帖子点赞
	run := uuid.NewString()[:6]
	celeb := &model.User{ID: uuid.NewString(), Username: "celeb_" + run, Password: "p"}
	must(0, repository.NewUserRepository(db).Create(ctx, celeb))
	board := must(svc.Boards.Create(ctx, celeb.ID, service.CreateBoardInput{Name: "bench_" + run}))
	post := must(svc.Posts.Publish(ctx, celeb.ID, service.PublishInput{BoardID: board.ID, Title: "hello"}))

	users := make([]model.User, N)
	for i := range users {
		id := uuid.NewString()
		users[i] = model.User{ID: id, Username: "u" + id[:8], Nickname: "u" + id[:8], Password: "p"}
	}
	must(0, db.CreateInBatches(&users, 500).Error)

	var (
		mu        sync.Mutex
		latencies = make([]time.Duration, 0, N)
	)
	feed := make(chan int, N)
	for i := 0; i < N; i++ {
		feed <- i
	}
	close(feed)

	workers := CONC
	if workers > N {
		workers = N
	}
	t0 := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			for i := range feed {
				uid := users[i].ID
				st := time.Now()
				if err := withRetry(gctx, func() error { return svc.Relationships.Follow(gctx, uid, celeb.ID) }); err != nil {
					return fmt.Errorf("follow %s: %w", uid, err)
				}
				if err := withRetry(gctx, func() error { return svc.Posts.Like(gctx, post.ID, uid) }); err != nil {
					return fmt.Errorf("like %s: %w", uid, err)
				}
				if err := withRetry(gctx, func() error { return svc.Boards.Join(gctx, board.ID, uid) }); err != nil {
					return fmt.Errorf("join %s: %w", uid, err)
				}
				d := time.Since(st)
				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		fmt.Println("bench aborted:", err)
		os.Exit(1)
	}
	writeDur := time.Since(t0)

	drainStart := time.Now()
	_ = stop(context.Background())
	drainDur := time.Since(drainStart)
	close(collectDone)
	notified := <-notifyLat

	q0 := time.Now()
	_, _ = followRepo.ListFollowers(ctx, celeb.ID, 0, PAGE)
	fansDur := time.Since(q0)

	q1 := time.Now()
	_, _ = svc.Posts.ListLikers(ctx, post.ID, 1, PAGE)
	likersDur := time.Since(q1)

	fmt.Printf("N=%d, CONC=%d, PAGE=%d\n", N, CONC, PAGE)
	fmt.Printf("follow+like+join total: %v, per user: %v, p50: %v, p95: %v, p99: %v\n",
		writeDur, writeDur/time.Duration(N), pct(latencies, 0.50), pct(latencies, 0.95), pct(latencies, 0.99))
	fmt.Printf("Query fans(%d) latency: %v\n", PAGE, fansDur)
	fmt.Printf("Query likers(%d) latency: %v\n", PAGE, likersDur)
	fmt.Printf("Notifier drain: %v\n", drainDur)
	fmt.Printf("Notify latency (%d samples) p50: %v, p95: %v, p99: %v\n",
		len(notified), pct(notified, 0.50), pct(notified, 0.95), pct(notified, 0.99))

	// 增量计数必须与重算结果一致
	checks := []struct {
		kind  repository.CounterKind
		owner string
		want  int64
	}{
		{repository.CounterUserFollowers, celeb.ID, int64(N)},
		{repository.CounterPostLikes, post.ID, int64(N)},
		{repository.CounterUserLikes, celeb.ID, int64(N)},
		{repository.CounterBoardMembers, board.ID, int64(N + 1)},
	}
	ok := true
	for _, c := range checks {
		stored := must(counters.Stored(ctx, c.kind, c.owner))
		actual := must(counters.Count(ctx, c.kind, c.owner))
		status := "ok"
		if stored != actual || actual != c.want {
			status = "MISMATCH"
			ok = false
		}
		fmt.Printf("%-16s stored=%d recomputed=%d want=%d %s\n", c.kind, stored, actual, c.want, status)
	}
	if !ok {
		os.Exit(1)
	}
}
