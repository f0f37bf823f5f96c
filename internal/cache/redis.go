package cache

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// SpaceCache 스페이스 상세 응답 캐시.
// nil 리시버도 동작한다 (Redis 미설정 시 캐시 없이 기동).
type SpaceCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSpaceCache Redis 클라이언트 생성 및 연결 확인
func NewSpaceCache(addr, password string, db int, ttl time.Duration) (*SpaceCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &SpaceCache{client: client, ttl: ttl}, nil
}

func detailKey(spaceID string) string {
	return "space:detail:" + spaceID
}

// GetSpaceDetail 캐시된 상세 응답 조회
func (c *SpaceCache) GetSpaceDetail(ctx context.Context, spaceID string) ([]byte, bool) {
	if c == nil {
		return nil, false
	}

	payload, err := c.client.Get(ctx, detailKey(spaceID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Printf("cache get failed (space=%s): %v", spaceID, err)
		}
		return nil, false
	}
	return payload, true
}

// SetSpaceDetail 상세 응답 캐싱 (TTL 적용)
func (c *SpaceCache) SetSpaceDetail(ctx context.Context, spaceID string, payload []byte) {
	if c == nil {
		return
	}

	if err := c.client.Set(ctx, detailKey(spaceID), payload, c.ttl).Err(); err != nil {
		log.Printf("cache set failed (space=%s): %v", spaceID, err)
	}
}

// InvalidateSpace 스페이스 변경 시 캐시 무효화
func (c *SpaceCache) InvalidateSpace(ctx context.Context, spaceID string) {
	if c == nil {
		return
	}

	if err := c.client.Del(ctx, detailKey(spaceID)).Err(); err != nil {
		log.Printf("cache invalidate failed (space=%s): %v", spaceID, err)
	}
}

// Ping 연결 확인 (헬스체크용)
func (c *SpaceCache) Ping(ctx context.Context) error {
	if c == nil {
		return nil
	}
	return c.client.Ping(ctx).Err()
}

// Close 클라이언트 종료
func (c *SpaceCache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}
