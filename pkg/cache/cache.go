// Copyright 2025 Minija Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// ICache defines the cache interface consumed by the repo layer.
type ICache interface {
	// Get returns a cached value
	Get(ctx context.Context, key string) *redis.StringCmd
	// Set stores a value with expiration
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	// Del removes keys
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	// Exists reports how many of the given keys exist
	Exists(ctx context.Context, keys ...string) *redis.IntCmd
	// TTL returns the remaining lifetime of a key
	TTL(ctx context.Context, key string) *redis.DurationCmd
	// Expire sets a key's expiration
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
}
