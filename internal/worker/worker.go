package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/routeward/routeward/internal/config"
	"github.com/routeward/routeward/internal/manager"
	"github.com/routeward/routeward/internal/route"
)

// Mutation operation names accepted on the stream.
const (
	OpAdd     = "add"
	OpInsert  = "insert"
	OpReplace = "replace"
	OpRemove  = "remove"
)

// MutationRequest is one route mutation submitted through the stream.
type MutationRequest struct {
	RequestID string       `json:"request_id,omitempty"`
	Op        string       `json:"op"`
	Server    string       `json:"server"`
	Route     *route.Route `json:"route,omitempty"`
	TargetID  string       `json:"target_id,omitempty"`
	Position  string       `json:"position,omitempty"`
	BeforeID  string       `json:"before_id,omitempty"`
	AfterID   string       `json:"after_id,omitempty"`
}

// Worker consumes mutation requests from a Redis stream and applies them
// through the manager. A single consumer group serializes the
// read-modify-write cycles, which is the supported way to avoid the
// last-write-wins race between concurrent mutators of the same server.
type Worker struct {
	id            string
	config        *config.Config
	redisClient   *redis.Client
	manager       *manager.Manager
	logger        *zap.Logger
	ctx           context.Context
	cancel        context.CancelFunc
	streamKey     string
	consumerGroup string
	resultStream  string
}

// NewWorker creates a new worker.
func NewWorker(
	cfg *config.Config,
	redisClient *redis.Client,
	mgr *manager.Manager,
	logger *zap.Logger,
) *Worker {
	ctx, cancel := context.WithCancel(context.Background())

	return &Worker{
		id:            cfg.WorkerID,
		config:        cfg,
		redisClient:   redisClient,
		manager:       mgr,
		logger:        logger,
		ctx:           ctx,
		cancel:        cancel,
		streamKey:     cfg.StreamKey,
		consumerGroup: cfg.ConsumerGroup,
		resultStream:  cfg.ResultStream,
	}
}

// Start starts the worker.
func (w *Worker) Start() error {
	w.logger.Info("starting mutation worker",
		zap.String("worker_id", w.id),
		zap.String("stream_key", w.streamKey),
		zap.String("consumer_group", w.consumerGroup),
	)

	if err := w.ensureConsumerGroup(); err != nil {
		return fmt.Errorf("failed to ensure consumer group: %w", err)
	}

	go w.processWork()

	w.logger.Info("mutation worker started", zap.String("worker_id", w.id))
	return nil
}

// Stop stops the worker gracefully.
func (w *Worker) Stop() error {
	w.logger.Info("stopping mutation worker", zap.String("worker_id", w.id))

	w.cancel()

	// Give an in-flight mutation a moment to finish its write.
	time.Sleep(2 * time.Second)

	w.logger.Info("mutation worker stopped", zap.String("worker_id", w.id))
	return nil
}

// ensureConsumerGroup creates the consumer group if it doesn't exist.
func (w *Worker) ensureConsumerGroup() error {
	err := w.redisClient.XGroupCreateMkStream(w.ctx, w.streamKey, w.consumerGroup, "0").Err()
	if err != nil {
		// BUSYGROUP means the group already exists, which is fine.
		if err.Error() == "BUSYGROUP Consumer Group name already exists" {
			w.logger.Debug("consumer group already exists",
				zap.String("group", w.consumerGroup),
			)
			return nil
		}
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	w.logger.Info("created consumer group",
		zap.String("group", w.consumerGroup),
		zap.String("stream", w.streamKey),
	)
	return nil
}

// processWork processes mutation requests from the Redis stream.
func (w *Worker) processWork() {
	w.logger.Info("starting mutation processing loop")

	for {
		select {
		case <-w.ctx.Done():
			w.logger.Info("mutation processing loop stopped")
			return
		default:
			streams, err := w.redisClient.XReadGroup(w.ctx, &redis.XReadGroupArgs{
				Group:    w.consumerGroup,
				Consumer: w.id,
				Streams:  []string{w.streamKey, ">"},
				Count:    1,
				Block:    w.config.BlockTime,
			}).Result()

			if err != nil {
				if err == redis.Nil {
					continue
				}
				w.logger.Error("failed to read from stream",
					zap.Error(err),
				)
				time.Sleep(time.Second)
				continue
			}

			for _, stream := range streams {
				for _, message := range stream.Messages {
					w.handleMessage(message)
				}
			}
		}
	}
}

// handleMessage handles a single mutation request message.
func (w *Worker) handleMessage(message redis.XMessage) {
	messageID := message.ID
	w.logger.Info("processing mutation request",
		zap.String("message_id", messageID),
	)

	request, err := parseMutationRequest(message.Values)
	if err != nil {
		w.logger.Error("failed to parse mutation request",
			zap.String("message_id", messageID),
			zap.Error(err),
		)
		w.acknowledgeMessage(messageID)
		return
	}

	applied, err := w.applyMutation(w.ctx, request)
	if err != nil {
		w.logger.Error("failed to apply mutation",
			zap.String("message_id", messageID),
			zap.String("request_id", request.RequestID),
			zap.String("op", request.Op),
			zap.Error(err),
		)
		w.publishError(request, err)
	} else if err := w.publishResult(request, applied); err != nil {
		w.logger.Error("failed to publish mutation result",
			zap.String("message_id", messageID),
			zap.String("request_id", request.RequestID),
			zap.Error(err),
		)
	}

	w.acknowledgeMessage(messageID)
}

// parseMutationRequest parses a mutation request from a Redis message. A
// missing request id gets one generated so results stay correlatable.
func parseMutationRequest(values map[string]interface{}) (*MutationRequest, error) {
	dataStr, ok := values["data"].(string)
	if !ok {
		return nil, fmt.Errorf("missing or invalid 'data' field")
	}

	var request MutationRequest
	if err := json.Unmarshal([]byte(dataStr), &request); err != nil {
		return nil, fmt.Errorf("failed to unmarshal mutation request: %w", err)
	}
	if request.Server == "" {
		return nil, fmt.Errorf("mutation request missing server name")
	}
	if request.RequestID == "" {
		request.RequestID = uuid.NewString()
	}

	return &request, nil
}

// applyMutation dispatches one request to the manager. The boolean mirrors
// the manager's no-op reporting: false means the mutation was a no-op, not
// a failure.
func (w *Worker) applyMutation(ctx context.Context, request *MutationRequest) (bool, error) {
	switch request.Op {
	case OpAdd:
		if request.Route == nil {
			return false, fmt.Errorf("add request requires a route")
		}
		return w.manager.AddRouteIfAbsent(ctx, request.Server, *request.Route)

	case OpInsert:
		if request.Route == nil {
			return false, fmt.Errorf("insert request requires a route")
		}
		err := w.manager.InsertRoute(ctx, request.Server, *request.Route, route.InsertOptions{
			Position: route.Position(request.Position),
			BeforeID: request.BeforeID,
			AfterID:  request.AfterID,
		})
		return err == nil, err

	case OpReplace:
		if request.Route == nil {
			return false, fmt.Errorf("replace request requires a route")
		}
		if request.TargetID == "" {
			return false, fmt.Errorf("replace request requires a target id")
		}
		return w.manager.ReplaceRouteByID(ctx, request.Server, request.TargetID, *request.Route)

	case OpRemove:
		if request.TargetID == "" {
			return false, fmt.Errorf("remove request requires a target id")
		}
		return w.manager.RemoveRouteByID(ctx, request.Server, request.TargetID)

	default:
		return false, fmt.Errorf("unknown mutation op: %s", request.Op)
	}
}

// publishResult publishes the mutation outcome to the result stream.
func (w *Worker) publishResult(request *MutationRequest, applied bool) error {
	result := map[string]interface{}{
		"request_id": request.RequestID,
		"op":         request.Op,
		"server":     request.Server,
		"applied":    applied,
		"timestamp":  time.Now().UTC(),
	}

	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}

	_, err = w.redisClient.XAdd(w.ctx, &redis.XAddArgs{
		Stream: w.resultStream,
		Values: map[string]interface{}{
			"data": string(data),
		},
	}).Result()

	if err != nil {
		return fmt.Errorf("failed to publish to stream: %w", err)
	}

	w.logger.Info("published mutation result",
		zap.String("request_id", request.RequestID),
		zap.String("op", request.Op),
		zap.Bool("applied", applied),
	)

	return nil
}

// publishError publishes an error event.
func (w *Worker) publishError(request *MutationRequest, err error) {
	errorEvent := map[string]interface{}{
		"request_id": request.RequestID,
		"op":         request.Op,
		"server":     request.Server,
		"error":      err.Error(),
		"timestamp":  time.Now().UTC(),
	}

	data, marshalErr := json.Marshal(errorEvent)
	if marshalErr != nil {
		w.logger.Error("failed to marshal error event", zap.Error(marshalErr))
		return
	}

	_, publishErr := w.redisClient.XAdd(w.ctx, &redis.XAddArgs{
		Stream: w.resultStream + ".errors",
		Values: map[string]interface{}{
			"data": string(data),
		},
	}).Result()

	if publishErr != nil {
		w.logger.Error("failed to publish error event", zap.Error(publishErr))
	}
}

// acknowledgeMessage acknowledges a message from the stream.
func (w *Worker) acknowledgeMessage(messageID string) {
	err := w.redisClient.XAck(w.ctx, w.streamKey, w.consumerGroup, messageID).Err()
	if err != nil {
		w.logger.Error("failed to acknowledge message",
			zap.String("message_id", messageID),
			zap.Error(err),
		)
	}
}
