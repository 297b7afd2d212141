package workers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/ordinoproj/ordino/pkg/models"
	"github.com/ordinoproj/ordino/pkg/protocol"
)

const (
	redisConnectTimeout = 5 * time.Second
	replyPollInterval   = 1 * time.Second
)

// RedisTransport queues delegation requests onto a per-worker-type work
// list and blocks on a per-request reply list. A worker pool pops the
// work list, performs the work, and pushes its reply onto
// ordino:reply:<request-id>. The reply is either the flat outputs
// object or {"error": "..."} when the worker failed.
type RedisTransport struct {
	client *redis.Client
	logger *slog.Logger
}

var _ protocol.WorkerTransport = (*RedisTransport)(nil)

func NewRedisTransport(ctx context.Context, redisURL string, logger *slog.Logger) (*RedisTransport, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, redisConnectTimeout)
	defer cancel()

	err = client.Ping(pingCtx).Err()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	transportLogger := logger.With("module", "redis_transport")
	transportLogger.InfoContext(ctx, "Connected to Redis", "addr", opts.Addr, "db", opts.DB)

	return &RedisTransport{client: client, logger: transportLogger}, nil
}

func (t *RedisTransport) Send(ctx context.Context, request *models.DelegationRequest) (map[string]any, error) {
	payload, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal delegation request: %w", err)
	}

	workQueue := workQueueKey(request.WorkerType)
	replyQueue := replyQueueKey(request.ID)

	// A reply landing after the deadline would otherwise strand the
	// per-request list.
	defer func() {
		cleanupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), replyPollInterval)
		defer cancel()

		t.client.Del(cleanupCtx, replyQueue)
	}()

	err = t.client.RPush(ctx, workQueue, payload).Err()
	if err != nil {
		return nil, fmt.Errorf("failed to enqueue delegation request: %w", err)
	}

	t.logger.DebugContext(ctx, "Enqueued delegation request", "queue", workQueue, "request_id", request.ID)

	for {
		result, err := t.client.BLPop(ctx, replyPollInterval, replyQueue).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}

				continue
			}

			return nil, fmt.Errorf("failed to pop worker reply: %w", err)
		}

		if len(result) < 2 {
			return nil, fmt.Errorf("%w: empty reply", ErrProtocol)
		}

		return decodeReply([]byte(result[1]))
	}
}

func (t *RedisTransport) Close(_ context.Context) error {
	return t.client.Close()
}

func workQueueKey(workerType string) string {
	return "ordino:work:" + workerType
}

func replyQueueKey(requestID string) string {
	return "ordino:reply:" + requestID
}

func decodeReply(payload []byte) (map[string]any, error) {
	var outputs map[string]any

	err := json.Unmarshal(payload, &outputs)
	if err != nil {
		return nil, fmt.Errorf("%w: undecodable reply payload: %v", ErrProtocol, err)
	}

	if failure, ok := outputs["error"].(string); ok && failure != "" {
		return nil, fmt.Errorf("%w: %s", ErrWorkerFailed, failure)
	}

	return outputs, nil
}
