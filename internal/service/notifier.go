package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/d60-Lab/tieba/internal/model"
	"github.com/d60-Lab/tieba/internal/repository"
	"github.com/d60-Lab/tieba/pkg/logger"
)

// Payload 通知内容；ActorID 是触发者，等于接收者时不发送
type Payload struct {
	ActorID   string
	PostID    string
	CommentID string
	Title     string
	Content   string
}

// Notifier 核心写路径在事务提交后调用，发送即忘
type Notifier interface {
	Notify(recipientID string, kind model.NotificationType, p Payload)
}

// Publisher 通知落库后的实时推送出口
type Publisher interface {
	Publish(ctx context.Context, userID string, v any) error
}

type notifyJob struct {
	recipient string
	kind      model.NotificationType
	payload   Payload
	enqAt     time.Time
}

// NotificationDispatcher 本地异步通知投递：有界队列 + N 个 worker
type NotificationDispatcher struct {
	repo      repository.NotificationRepository
	publisher Publisher
	ch        chan notifyJob
	metricsCh chan time.Duration
}

// NewNotificationDispatcher publisher 可为 nil（未配置 Redis）
func NewNotificationDispatcher(repo repository.NotificationRepository, publisher Publisher, queueSize int) *NotificationDispatcher {
	if queueSize <= 0 {
		queueSize = 10000
	}
	return &NotificationDispatcher{
		repo:      repo,
		publisher: publisher,
		ch:        make(chan notifyJob, queueSize),
		metricsCh: make(chan time.Duration, 4096),
	}
}

// Start 启动 worker，返回的函数停止接收新任务、排空队列后返回
func (d *NotificationDispatcher) Start(workers int) func(context.Context) error {
	if workers <= 0 {
		workers = 4
	}
	stopCh := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case job := <-d.ch:
					d.handle(job)
				case <-stopCh:
					for {
						select {
						case job := <-d.ch:
							d.handle(job)
						default:
							return
						}
					}
				}
			}
		}()
	}
	return func(ctx context.Context) error {
		close(stopCh)
		done := make(chan struct{})
		go func() {
			wg.Wait()
			close(done)
		}()
		select {
		case <-done:
			return nil
		case <-ctx.Done():
			logger.Warn("notifier stop timeout", zap.Int("pending", len(d.ch)))
			return ctx.Err()
		}
	}
}

func (d *NotificationDispatcher) handle(job notifyJob) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := d.Deliver(ctx, job.recipient, job.kind, job.payload); err != nil {
		logger.Warn("deliver notification failed",
			zap.String("user", job.recipient), zap.String("type", string(job.kind)), zap.Error(err))
	}
	select {
	case d.metricsCh <- time.Since(job.enqAt):
	default:
	}
}

// Notify 入队；队列满时丢弃并记录
func (d *NotificationDispatcher) Notify(recipientID string, kind model.NotificationType, p Payload) {
	if recipientID == "" || recipientID == p.ActorID {
		return
	}
	select {
	case d.ch <- notifyJob{recipient: recipientID, kind: kind, payload: p, enqAt: time.Now()}:
	default:
		logger.Warn("notifier queue full, drop", zap.String("user", recipientID), zap.String("type", string(kind)))
	}
}

// Deliver 同步投递一条通知：检查用户设置 -> 落库 -> 推送
func (d *NotificationDispatcher) Deliver(ctx context.Context, recipientID string, kind model.NotificationType, p Payload) error {
	if recipientID == "" || recipientID == p.ActorID {
		return nil
	}
	settings, err := d.repo.Settings(ctx, recipientID)
	if err != nil {
		return err
	}
	if !settings.Allows(kind) {
		return nil
	}
	n := &model.Notification{
		ID:               uuid.New().String(),
		UserID:           recipientID,
		Type:             kind,
		Title:            p.Title,
		Content:          p.Content,
		RelatedPostID:    optional(p.PostID),
		RelatedCommentID: optional(p.CommentID),
		RelatedUserID:    optional(p.ActorID),
		CreatedAt:        time.Now(),
	}
	if err := d.repo.Create(ctx, n); err != nil {
		return err
	}
	if d.publisher != nil {
		if err := d.publisher.Publish(ctx, recipientID, n); err != nil {
			// 推送失败不影响已落库的通知
			logger.Warn("publish notification failed", zap.String("user", recipientID), zap.Error(err))
		}
	}
	return nil
}

// Metrics 入队到投递完成的耗时采样
func (d *NotificationDispatcher) Metrics() <-chan time.Duration { return d.metricsCh }

// QueueLen 返回当前队列长度（采样值）。
func (d *NotificationDispatcher) QueueLen() int { return len(d.ch) }

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// NopNotifier 丢弃所有通知
type NopNotifier struct{}

func (NopNotifier) Notify(string, model.NotificationType, Payload) {}

func orNop(n Notifier) Notifier {
	if n == nil {
		return NopNotifier{}
	}
	return n
}
