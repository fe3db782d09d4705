package redis

import (
	"context"
	"sort"
	"time"
)

// Hash is a redis hash loaded into memory
type Hash struct {
	key    string
	fields map[string]interface{}
}

// NewHash creates a hash stored under key
func NewHash(key string, fields map[string]interface{}) *Hash {
	if fields == nil {
		fields = make(map[string]interface{})
	}
	return &Hash{key: key, fields: fields}
}

// Key returns the redis key of the hash
func (h *Hash) Key() string {
	return h.key
}

// Get returns a field value
func (h *Hash) Get(field string) (interface{}, bool) {
	v, ok := h.fields[field]
	return v, ok
}

// Set updates a field in memory
func (h *Hash) Set(field string, value interface{}) *Hash {
	h.fields[field] = value
	return h
}

// Fields returns the field names in sorted order
func (h *Hash) Fields() []string {
	names := make([]string, 0, len(h.fields))
	for name := range h.fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Map returns the fields
func (h *Hash) Map() map[string]interface{} {
	return h.fields
}

// Save writes the hash with SaveHash
func (h *Hash) Save(ctx context.Context, a *Adapter, expire time.Duration) error {
	return SaveHash(ctx, a, h.key, h.fields, expire)
}

// GetHashField reads one raw field. The bool is false when the field does
// not exist.
func GetHashField(ctx context.Context, a *Adapter, key, field string) (string, bool, error) {
	client, err := ensure(a)
	if err != nil {
		return "", false, err
	}
	val, err := client.HGet(ctx, client.Key(key), field).Result()
	if isNil(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

// FindHash loads the hash under key. A missing or empty hash yields nil.
func FindHash(ctx context.Context, a *Adapter, key string) (*Hash, error) {
	client, err := ensure(a)
	if err != nil {
		return nil, err
	}
	raw, err := client.HGetAll(ctx, client.Key(key)).Result()
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, nil
	}
	fields := make(map[string]interface{}, len(raw))
	for field, val := range raw {
		fields[field] = unserialize(val)
	}
	return NewHash(key, fields), nil
}

// SaveHash writes fields under key. A positive expire sets the key TTL.
// Saving no fields removes the key, since redis holds no empty hashes.
func SaveHash(ctx context.Context, a *Adapter, key string, fields map[string]interface{}, expire time.Duration) error {
	client, err := ensure(a)
	if err != nil {
		return err
	}
	if len(fields) == 0 {
		return client.Del(ctx, client.Key(key)).Err()
	}
	values := make(map[string]interface{}, len(fields))
	for field, val := range fields {
		s, err := serialize(val)
		if err != nil {
			return err
		}
		values[field] = s
	}

	accessor := client.Key(key)
	pipe := client.TxPipeline()
	pipe.HSet(ctx, accessor, values)
	if expire > 0 {
		pipe.Expire(ctx, accessor, expire)
	}
	_, err = pipe.Exec(ctx)
	return err
}

// ClearHash deletes the hash under key
func ClearHash(ctx context.Context, a *Adapter, key string) error {
	client, err := ensure(a)
	if err != nil {
		return err
	}
	return client.Del(ctx, client.Key(key)).Err()
}
