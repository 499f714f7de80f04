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
	"context"
	"fmt"
)

// CreateSchema creates tables for all registered entities directly against
// the configured database, in priority order. It bypasses any migration
// tooling on purpose: migrations belong to external tools, this is the
// bootstrap path used by the init-db command.
func (e *Engine) CreateSchema(ctx context.Context) error {
	db, err := e.DB(ctx)
	if err != nil {
		return err
	}
	for _, entity := range RegisteredEntityInstances() {
		if _, err := db.NewCreateTable().Model(entity).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("failed to create table for %T: %w", entity, err)
		}
	}
	e.logger.Info("Schema creation completed", "entities", len(RegisteredEntityInstances()))
	return nil
}

// ResetSchema drops all registered entity tables in reverse priority order
// and recreates them. Destroys data; meant for tests and fresh environments.
func (e *Engine) ResetSchema(ctx context.Context) error {
	db, err := e.DB(ctx)
	if err != nil {
		return err
	}
	instances := RegisteredEntityInstances()
	for i := len(instances) - 1; i >= 0; i-- {
		if _, err := db.NewDropTable().Model(instances[i]).IfExists().Exec(ctx); err != nil {
			return fmt.Errorf("failed to drop table for %T: %w", instances[i], err)
		}
	}
	return e.CreateSchema(ctx)
}
