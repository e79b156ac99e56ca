package idgen

import (
	"errors"
	"sync"
	"time"
)

const (
	// 起始时间戳 (2023-01-01 00:00:00 UTC)
	epoch int64 = 1672531200000

	// 各部分位数
	workerIDBits     = 5
	datacenterIDBits = 5
	sequenceBits     = 12

	// 最大值
	maxWorkerID     = -1 ^ (-1 << workerIDBits)     // 31
	maxDatacenterID = -1 ^ (-1 << datacenterIDBits) // 31
	maxSequence     = -1 ^ (-1 << sequenceBits)     // 4095

	// 位移
	workerIDShift      = sequenceBits
	datacenterIDShift  = sequenceBits + workerIDBits
	timestampLeftShift = sequenceBits + workerIDBits + datacenterIDBits
)

var (
	ErrDatacenterIDRange = errors.New("datacenter ID out of range")
	ErrWorkerIDRange     = errors.New("worker ID out of range")
	ErrClockBackwards    = errors.New("clock moved backwards, refusing to generate id")
)

// Snowflake 雪花算法生成器：41 位毫秒时间戳、5 位数据中心、5 位工作节点、12 位序列
type Snowflake struct {
	mux           sync.Mutex
	datacenterID  int64
	workerID      int64
	sequence      int64
	lastTimestamp int64
	now           func() time.Time
}

// NewSnowflake 创建雪花生成器
func NewSnowflake(datacenterID, workerID int64) (*Snowflake, error) {
	if datacenterID < 0 || datacenterID > maxDatacenterID {
		return nil, ErrDatacenterIDRange
	}
	if workerID < 0 || workerID > maxWorkerID {
		return nil, ErrWorkerIDRange
	}
	return &Snowflake{
		datacenterID:  datacenterID,
		workerID:      workerID,
		lastTimestamp: -1,
		now:           time.Now,
	}, nil
}

// WithClock 设置时间函数（用于测试）
func (g *Snowflake) WithClock(now func() time.Time) *Snowflake {
	g.now = now
	return g
}

func (g *Snowflake) millis() int64 {
	return g.now().UnixMilli()
}

// NextID 生成下一个ID
func (g *Snowflake) NextID() (int64, error) {
	g.mux.Lock()
	defer g.mux.Unlock()

	now := g.millis()
	if now < g.lastTimestamp {
		return 0, ErrClockBackwards
	}

	if now == g.lastTimestamp {
		g.sequence = (g.sequence + 1) & maxSequence
		if g.sequence == 0 {
			// 序列号用完，等待下一毫秒
			for now <= g.lastTimestamp {
				time.Sleep(100 * time.Microsecond)
				now = g.millis()
			}
		}
	} else {
		g.sequence = 0
	}

	g.lastTimestamp = now

	id := ((now - epoch) << timestampLeftShift) |
		(g.datacenterID << datacenterIDShift) |
		(g.workerID << workerIDShift) |
		g.sequence
	return id, nil
}

// Parts 雪花 ID 的组成部分
type Parts struct {
	Timestamp    time.Time
	DatacenterID int64
	WorkerID     int64
	Sequence     int64
}

// Parse 解析ID
func Parse(id int64) Parts {
	return Parts{
		Timestamp:    time.UnixMilli((id >> timestampLeftShift) + epoch).UTC(),
		DatacenterID: (id >> datacenterIDShift) & maxDatacenterID,
		WorkerID:     (id >> workerIDShift) & maxWorkerID,
		Sequence:     id & maxSequence,
	}
}
