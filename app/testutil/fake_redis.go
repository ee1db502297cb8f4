// Author: Eryk Kulikowski @ KU Leuven (2024). Apache 2.0 License

package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// FakeRedis is a simple in-memory stand-in for the redis client, covering the
// commands the application uses: values with expiration, locks and job lists.
type FakeRedis struct {
	sync.Mutex
	values      map[string]string
	expirations map[string]time.Time
	lists       map[string][]string
}

func NewFakeRedis() *FakeRedis {
	return &FakeRedis{
		values:      make(map[string]string),
		expirations: make(map[string]time.Time),
		lists:       make(map[string][]string),
	}
}

func (f *FakeRedis) Ping(ctx context.Context) *redis.StatusCmd {
	cmd := redis.NewStatusCmd(ctx)
	cmd.SetVal("PONG")
	return cmd
}

func (f *FakeRedis) get(key string) string {
	v := f.values[key]
	exp, ok := f.expirations[key]
	if ok && exp.Before(time.Now()) {
		v = ""
		delete(f.values, key)
		delete(f.expirations, key)
	}
	return v
}

func (f *FakeRedis) set(key string, value interface{}, expiration time.Duration) {
	f.values[key] = fmt.Sprintf("%v", value)
	if expiration > 0 {
		f.expirations[key] = time.Now().Add(expiration)
	} else {
		delete(f.expirations, key)
	}
}

func (f *FakeRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	f.Lock()
	defer f.Unlock()
	cmd := redis.NewStringCmd(ctx)
	cmd.SetVal(f.get(key))
	return cmd
}

func (f *FakeRedis) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	f.Lock()
	defer f.Unlock()
	f.set(key, value, expiration)
	cmd := redis.NewStatusCmd(ctx)
	cmd.SetVal("OK")
	return cmd
}

func (f *FakeRedis) SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd {
	f.Lock()
	defer f.Unlock()
	cmd := redis.NewBoolCmd(ctx)
	if f.get(key) != "" {
		cmd.SetVal(false)
		return cmd
	}
	f.set(key, value, expiration)
	cmd.SetVal(true)
	return cmd
}

func (f *FakeRedis) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	f.Lock()
	defer f.Unlock()
	deleted := int64(0)
	for _, key := range keys {
		if _, ok := f.values[key]; ok {
			deleted++
		}
		delete(f.values, key)
		delete(f.expirations, key)
	}
	cmd := redis.NewIntCmd(ctx)
	cmd.SetVal(deleted)
	return cmd
}

func (f *FakeRedis) LPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd {
	f.Lock()
	defer f.Unlock()
	for _, v := range values {
		f.lists[key] = append([]string{fmt.Sprintf("%v", v)}, f.lists[key]...)
	}
	cmd := redis.NewIntCmd(ctx)
	cmd.SetVal(int64(len(f.lists[key])))
	return cmd
}

func (f *FakeRedis) RPop(ctx context.Context, key string) *redis.StringCmd {
	f.Lock()
	defer f.Unlock()
	cmd := redis.NewStringCmd(ctx)
	list := f.lists[key]
	if len(list) == 0 {
		cmd.SetErr(redis.Nil)
		return cmd
	}
	cmd.SetVal(list[len(list)-1])
	f.lists[key] = list[:len(list)-1]
	return cmd
}
