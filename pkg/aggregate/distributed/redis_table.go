package distributed

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vnykmshr/goagg/pkg/metrics"
)

// redisTable implements Table using Redis hashes.
type redisTable struct {
	config Config
	keys   map[string]string

	name     string
	registry *metrics.Registry

	// Lua script for atomic min/max merges
	mergeExtremesScript *redis.Script
}

// newRedisTable creates a Redis-backed distributed table.
func newRedisTable(config Config, name string, registry *metrics.Registry) (Table, error) {
	rt := &redisTable{
		config:   config,
		keys:     redisKeys(config.Key),
		name:     name,
		registry: registry,
	}

	rt.mergeExtremesScript = redis.NewScript(luaMergeExtremes)

	if err := rt.initialize(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to initialize table: %w", err)
	}

	return rt, nil
}

// initialize sets up the initial state in Redis.
func (rt *redisTable) initialize(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, rt.config.RedisTimeout)
	defer cancel()

	pipe := rt.config.Redis.Pipeline()

	// Store configuration
	pipe.HSet(ctx, rt.keys["config"], map[string]interface{}{
		"mode": rt.config.Mode.String(),
	})
	pipe.Expire(ctx, rt.keys["config"], rt.config.KeyTTL)

	// Initialize stats
	pipe.HSetNX(ctx, rt.keys["stats"], "total_merges", 0)
	pipe.HSetNX(ctx, rt.keys["stats"], "total_values", 0)
	pipe.Expire(ctx, rt.keys["stats"], rt.config.KeyTTL)

	// Register this instance
	pipe.SAdd(ctx, rt.keys["instances"], rt.config.InstanceID)
	pipe.Expire(ctx, rt.keys["instances"], rt.config.KeyTTL)

	_, err := pipe.Exec(ctx)
	if err != nil {
		return &RedisError{"initialize", err}
	}

	return nil
}

// Merge implements Table.Merge.
func (rt *redisTable) Merge(ctx context.Context, groups map[string]float64) error {
	if len(groups) == 0 {
		return nil
	}

	began := time.Now()
	ctx, cancel := context.WithTimeout(ctx, rt.config.RedisTimeout)
	defer cancel()

	var err error
	switch rt.config.Mode {
	case Sum:
		err = rt.mergeSums(ctx, groups)
	default:
		err = rt.mergeExtremes(ctx, groups)
	}

	rt.observe("merge", began, err)
	return err
}

// mergeSums folds contributions with HINCRBYFLOAT in one pipeline.
func (rt *redisTable) mergeSums(ctx context.Context, groups map[string]float64) error {
	pipe := rt.config.Redis.Pipeline()

	for key, value := range groups {
		pipe.HIncrByFloat(ctx, rt.keys["data"], key, value)
	}
	pipe.HIncrBy(ctx, rt.keys["stats"], "total_merges", 1)
	pipe.HIncrBy(ctx, rt.keys["stats"], "total_values", int64(len(groups)))
	pipe.Expire(ctx, rt.keys["data"], rt.config.KeyTTL)

	_, err := pipe.Exec(ctx)
	if err != nil {
		return &RedisError{"merge", err}
	}
	return nil
}

// mergeExtremes folds min/max contributions through one atomic Lua script.
func (rt *redisTable) mergeExtremes(ctx context.Context, groups map[string]float64) error {
	argv := make([]interface{}, 0, 2*len(groups)+2)
	argv = append(argv, rt.config.Mode.String(), int(rt.config.KeyTTL.Seconds()))
	for key, value := range groups {
		argv = append(argv, key, value)
	}

	err := rt.mergeExtremesScript.Run(ctx, rt.config.Redis, []string{
		rt.keys["data"],
		rt.keys["stats"],
	}, argv...).Err()

	if err != nil {
		return &RedisError{"merge", err}
	}
	return nil
}

// Add implements Table.Add.
func (rt *redisTable) Add(ctx context.Context, key string, value float64) error {
	return rt.Merge(ctx, map[string]float64{key: value})
}

// Get implements Table.Get.
func (rt *redisTable) Get(ctx context.Context, key string) (float64, bool, error) {
	began := time.Now()
	ctx, cancel := context.WithTimeout(ctx, rt.config.RedisTimeout)
	defer cancel()

	raw, err := rt.config.Redis.HGet(ctx, rt.keys["data"], key).Result()
	if err == redis.Nil {
		rt.observe("get", began, nil)
		return 0, false, nil
	}
	if err != nil {
		rt.observe("get", began, err)
		return 0, false, &RedisError{"get", err}
	}

	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		rt.observe("get", began, err)
		return 0, false, &RedisError{"get", err}
	}

	rt.observe("get", began, nil)
	return value, true, nil
}

// Snapshot implements Table.Snapshot.
func (rt *redisTable) Snapshot(ctx context.Context) (map[string]float64, error) {
	began := time.Now()
	ctx, cancel := context.WithTimeout(ctx, rt.config.RedisTimeout)
	defer cancel()

	raw, err := rt.config.Redis.HGetAll(ctx, rt.keys["data"]).Result()
	if err != nil {
		rt.observe("snapshot", began, err)
		return nil, &RedisError{"snapshot", err}
	}

	snapshot := make(map[string]float64, len(raw))
	for key, s := range raw {
		value, err := strconv.ParseFloat(s, 64)
		if err != nil {
			rt.observe("snapshot", began, err)
			return nil, &RedisError{"snapshot", err}
		}
		snapshot[key] = value
	}

	rt.observe("snapshot", began, nil)
	return snapshot, nil
}

// Instances implements Table.Instances.
func (rt *redisTable) Instances(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, rt.config.RedisTimeout)
	defer cancel()

	instances, err := rt.config.Redis.SMembers(ctx, rt.keys["instances"]).Result()
	if err != nil {
		return nil, &RedisError{"instances", err}
	}
	return instances, nil
}

// Stats implements Table.Stats.
func (rt *redisTable) Stats(ctx context.Context) (*Stats, error) {
	began := time.Now()
	ctx, cancel := context.WithTimeout(ctx, rt.config.RedisTimeout)
	defer cancel()

	pipe := rt.config.Redis.Pipeline()

	statsCmd := pipe.HGetAll(ctx, rt.keys["stats"])
	groupsCmd := pipe.HLen(ctx, rt.keys["data"])
	instancesCmd := pipe.SMembers(ctx, rt.keys["instances"])

	_, err := pipe.Exec(ctx)
	if err != nil && err != redis.Nil {
		rt.observe("stats", began, err)
		return nil, &RedisError{"stats", err}
	}

	statsMap := statsCmd.Val()
	totalMerges, _ := strconv.ParseInt(statsMap["total_merges"], 10, 64)
	totalValues, _ := strconv.ParseInt(statsMap["total_values"], 10, 64)

	rt.observe("stats", began, nil)
	return &Stats{
		Mode:            rt.config.Mode,
		Groups:          groupsCmd.Val(),
		TotalMerges:     totalMerges,
		TotalValues:     totalValues,
		ActiveInstances: instancesCmd.Val(),
	}, nil
}

// Reset implements Table.Reset.
func (rt *redisTable) Reset(ctx context.Context) error {
	began := time.Now()
	ctx, cancel := context.WithTimeout(ctx, rt.config.RedisTimeout)
	defer cancel()

	keys := make([]string, 0, len(rt.keys))
	for _, key := range rt.keys {
		keys = append(keys, key)
	}

	err := rt.config.Redis.Del(ctx, keys...).Err()
	if err != nil {
		rt.observe("reset", began, err)
		return &RedisError{"reset", err}
	}

	err = rt.initialize(ctx)
	rt.observe("reset", began, err)
	return err
}

// Close implements Table.Close.
func (rt *redisTable) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), rt.config.RedisTimeout)
	defer cancel()

	return rt.config.Redis.SRem(ctx, rt.keys["instances"], rt.config.InstanceID).Err()
}

// observe records one table operation when metrics are configured.
func (rt *redisTable) observe(operation string, began time.Time, err error) {
	if rt.registry == nil {
		return
	}

	rt.registry.TableOperations.WithLabelValues(rt.name, operation).Inc()
	rt.registry.TableOperationDuration.WithLabelValues(rt.name, operation).Observe(time.Since(began).Seconds())
	if err != nil {
		rt.registry.TableErrors.WithLabelValues(rt.name, operation).Inc()
	}
}

// Lua script for atomic min/max merges
const luaMergeExtremes = `
-- KEYS[1]: data hash
-- KEYS[2]: stats hash
-- ARGV[1]: mode ("min" or "max")
-- ARGV[2]: key TTL (seconds)
-- ARGV[3..]: alternating field, value pairs

local data_key = KEYS[1]
local stats_key = KEYS[2]

local mode = ARGV[1]
local ttl = tonumber(ARGV[2])

local updated = 0
for i = 3, #ARGV, 2 do
    local field = ARGV[i]
    local value = tonumber(ARGV[i + 1])
    local current = redis.call('HGET', data_key, field)

    if current == false then
        redis.call('HSET', data_key, field, value)
        updated = updated + 1
    else
        current = tonumber(current)
        if (mode == 'min' and value < current) or (mode == 'max' and value > current) then
            redis.call('HSET', data_key, field, value)
            updated = updated + 1
        end
    end
end

redis.call('HINCRBY', stats_key, 'total_merges', 1)
redis.call('HINCRBY', stats_key, 'total_values', (#ARGV - 2) / 2)
redis.call('EXPIRE', data_key, ttl)

return updated
`
