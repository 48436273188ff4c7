// Package archive provides best-effort raw webhook payload archival.
// This package is internal and should not be imported by external projects.
//
// 服务商的视频回调负载形状不受契约保证；这里将原始字节原样归档到
// MongoDB，供前向兼容排查与申诉复核。归档失败只记日志，绝不影响
// 审核决定。
package archive

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.uber.org/zap"
)

// =============================================================================
// 📥 回调负载归档
// =============================================================================

// Config 归档配置
type Config struct {
	// URI MongoDB 连接串；为空时禁用归档
	URI string `yaml:"uri" json:"uri"`

	// Database 数据库名
	Database string `yaml:"database" json:"database"`

	// Collection 集合名
	Collection string `yaml:"collection" json:"collection"`
}

// DefaultConfig 返回默认归档配置
func DefaultConfig() Config {
	return Config{
		Database:   "modflow",
		Collection: "webhook_payloads",
	}
}

// Archiver 原始负载归档接口（nil 实现意味着归档被禁用）
type Archiver interface {
	Append(ctx context.Context, taskID string, payload []byte)
	Close(ctx context.Context) error
}

// MongoArchiver 基于 MongoDB 的归档实现
type MongoArchiver struct {
	client     *mongo.Client
	collection *mongo.Collection
	logger     *zap.Logger
}

// payloadDoc 归档文档
type payloadDoc struct {
	TaskID     string    `bson:"task_id"`
	Payload    bson.Raw  `bson:"payload,omitempty"`
	RawText    string    `bson:"raw_text,omitempty"`
	ReceivedAt time.Time `bson:"received_at"`
}

// NewMongoArchiver 创建归档器并验证连接
func NewMongoArchiver(ctx context.Context, cfg Config, logger *zap.Logger) (*MongoArchiver, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}

	a := &MongoArchiver{
		client:     client,
		collection: client.Database(cfg.Database).Collection(cfg.Collection),
		logger:     logger.With(zap.String("component", "webhook_archive")),
	}
	logger.Info("webhook archive initialized",
		zap.String("database", cfg.Database),
		zap.String("collection", cfg.Collection),
	)
	return a, nil
}

// Append 归档一条原始负载。尽力而为：负载可能不是合法 BSON/JSON，
// 此时退回原文存储；任何失败只记日志。
func (a *MongoArchiver) Append(ctx context.Context, taskID string, payload []byte) {
	doc := payloadDoc{TaskID: taskID, ReceivedAt: time.Now()}

	var raw bson.Raw
	if err := bson.UnmarshalExtJSON(payload, false, &raw); err == nil {
		doc.Payload = raw
	} else {
		doc.RawText = string(payload)
	}

	insertCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if _, err := a.collection.InsertOne(insertCtx, doc); err != nil {
		a.logger.Warn("failed to archive webhook payload",
			zap.String("task_id", taskID),
			zap.Error(err),
		)
	}
}

// Close 断开 MongoDB 连接
func (a *MongoArchiver) Close(ctx context.Context) error {
	return a.client.Disconnect(ctx)
}
