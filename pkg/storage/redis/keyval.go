package redis

import (
	"context"
	stderrors "errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
)

// TTLMode selects how a TTL value is read by SET
type TTLMode string

const (
	TTLSeconds      TTLMode = "EX"
	TTLMilliseconds TTLMode = "PX"
	TTLUnixSeconds  TTLMode = "EXAT"
	TTLUnixMillis   TTLMode = "PXAT"
	TTLKeepExisting TTLMode = "KEEPTTL"
)

// TTL is the expiry passed to SET
type TTL struct {
	Mode  TTLMode
	Value int64
}

// Keep retains the TTL already set on the key
func Keep() *TTL {
	return &TTL{Mode: TTLKeepExisting}
}

// Condition restricts when SET writes
type Condition string

const (
	// IfNotExists writes only new keys (NX)
	IfNotExists Condition = "NX"
	// IfExists writes only existing keys (XX)
	IfExists Condition = "XX"
)

// SetOptions tunes KeyVal.Set
type SetOptions struct {
	TTL       *TTL
	Condition Condition
}

// KeyVal stores plain values under prefixed keys
type KeyVal struct {
	// Adapter defaults to the default redis adapter when nil
	Adapter *Adapter
	Prefix  string
}

// Get returns the stored value. The bool is false for missing keys.
func (kv KeyVal) Get(ctx context.Context, key string) (interface{}, bool, error) {
	client, err := ensure(kv.Adapter)
	if err != nil {
		return nil, false, err
	}
	raw, err := client.Get(ctx, kv.key(client, key)).Result()
	if isNil(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return unserialize(raw), true, nil
}

// Set stores value. It returns false without error when the condition
// prevented the write.
func (kv KeyVal) Set(ctx context.Context, key string, value interface{}, opts SetOptions) (bool, error) {
	client, err := ensure(kv.Adapter)
	if err != nil {
		return false, err
	}
	val, err := serialize(value)
	if err != nil {
		return false, err
	}

	args := []interface{}{"set", kv.key(client, key), val}
	if opts.TTL != nil {
		switch opts.TTL.Mode {
		case TTLKeepExisting:
			args = append(args, "keepttl")
		case TTLSeconds, TTLMilliseconds, TTLUnixSeconds, TTLUnixMillis:
			args = append(args, string(opts.TTL.Mode), opts.TTL.Value)
		default:
			return false, fmt.Errorf("unknown ttl mode %q", opts.TTL.Mode)
		}
	}
	switch opts.Condition {
	case "":
	case IfNotExists, IfExists:
		args = append(args, string(opts.Condition))
	default:
		return false, fmt.Errorf("unknown set condition %q", opts.Condition)
	}

	err = client.Do(ctx, args...).Err()
	if isNil(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Delete removes key and returns the number of deleted keys
func (kv KeyVal) Delete(ctx context.Context, key string) (int64, error) {
	client, err := ensure(kv.Adapter)
	if err != nil {
		return 0, err
	}
	return client.Del(ctx, kv.key(client, key)).Result()
}

func (kv KeyVal) key(client *Client, key string) string {
	return client.Key(MakeKey(key, kv.Prefix))
}

func isNil(err error) bool {
	return stderrors.Is(err, goredis.Nil)
}
