/*
 * Copyright 2026 romakot321.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package database

import (
	"sort"
	"sync"
)

// Entities are Bun models: structs embedding bun.BaseModel whose bun tags
// declare the table name and column mappings. Registering an entity makes it
// known to schema creation and to Bun's model metadata. By convention the
// primary-key column is named id.

type registeredEntity struct {
	instance interface{}
	priority int
}

type entityRegistry struct {
	mu      sync.RWMutex
	entries []registeredEntity
}

var defaultEntities entityRegistry

// RegisterEntity adds an entity instance to the registry. Priority controls
// schema creation order, lower values first (parents before children).
// Typically called from init of the package declaring the entity.
func RegisterEntity(instance interface{}, priority int) {
	defaultEntities.mu.Lock()
	defer defaultEntities.mu.Unlock()
	defaultEntities.entries = append(defaultEntities.entries, registeredEntity{instance, priority})
}

// RegisteredEntityInstances returns registered entity instances sorted by
// ascending priority.
func RegisteredEntityInstances() []interface{} {
	defaultEntities.mu.RLock()
	defer defaultEntities.mu.RUnlock()

	entries := make([]registeredEntity, len(defaultEntities.entries))
	copy(entries, defaultEntities.entries)
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].priority < entries[j].priority
	})
	instances := make([]interface{}, len(entries))
	for i, e := range entries {
		instances[i] = e.instance
	}
	return instances
}
