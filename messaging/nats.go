package messaging

import (
	"context"
	"errors"
	"time"

	"github.com/goccy/go-json"
	"github.com/nats-io/nats.go"

	apperrors "tourneycompanion/errors"
	"tourneycompanion/logging"
)

// NATSConn NATSPublisher 所需的最小连接能力，*nats.Conn 满足该接口
type NATSConn interface {
	Publish(subject string, data []byte) error
}

// NATSConfig NATS 发布者配置
type NATSConfig struct {
	URL           string
	SubjectPrefix string
	Name          string
	Timeout       time.Duration
}

// NATSPublisher 将事件以 JSON 发布到 NATS 主题 <prefix>.<resource>.<type>
type NATSPublisher struct {
	conn   NATSConn
	owned  *nats.Conn
	prefix string
	logger logging.Logger
}

var _ IPublisher = (*NATSPublisher)(nil)

// NewNATSPublisher 基于已有连接创建发布者
func NewNATSPublisher(conn NATSConn, subjectPrefix string) *NATSPublisher {
	return &NATSPublisher{
		conn:   conn,
		prefix: subjectPrefix,
		logger: logging.Component("events.nats"),
	}
}

// ConnectNATS 建立连接并创建发布者，Close 时关闭连接
func ConnectNATS(cfg NATSConfig) (*NATSPublisher, error) {
	url := cfg.URL
	if url == "" {
		url = nats.DefaultURL
	}
	opts := []nats.Option{}
	if cfg.Name != "" {
		opts = append(opts, nats.Name(cfg.Name))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, nats.Timeout(cfg.Timeout))
	}
	conn, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, apperrors.WrapError(err, apperrors.ErrCodeQueue, "connect nats")
	}
	p := NewNATSPublisher(conn, cfg.SubjectPrefix)
	p.owned = conn
	return p, nil
}

func (p *NATSPublisher) Publish(ctx context.Context, evt Event) error {
	if p.conn == nil {
		return apperrors.NewError(apperrors.ErrCodeQueue, "nats publisher not connected")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(evt)
	if err != nil {
		return apperrors.WrapError(err, apperrors.ErrCodeQueue, "encode event")
	}
	subject := evt.Subject(p.prefix)
	if err := p.conn.Publish(subject, data); err != nil {
		return apperrors.WrapError(err, apperrors.ErrCodeQueue, "publish "+subject)
	}
	p.logger.Debug(ctx, "event published", logging.String("subject", subject), logging.String("event_id", evt.ID))
	return nil
}

// Close 刷新并关闭自有连接
func (p *NATSPublisher) Close() error {
	if p.owned == nil {
		return nil
	}
	err := p.owned.Flush()
	p.owned.Close()
	if err != nil && !errors.Is(err, nats.ErrConnectionClosed) {
		return err
	}
	return nil
}
