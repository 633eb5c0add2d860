// Copyright 2025 Kadir Pekel
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package vectorstore

import "fmt"

// Config selects and configures one backend, mirroring the teacher's
// pkg/databases NewXDatabaseProviderFromConfig factory pattern.
type Config struct {
	Backend        string // "postgres" | "qdrant" | "chromem" | "pinecone"
	DSN            string
	QdrantAddr     string
	QdrantAPIKey   string
	ChromemPath    string
	CollectionName string
	PineconeAPIKey string
	PineconeHost   string
}

// New builds the Store named by cfg.Backend.
func New(cfg Config) (Store, error) {
	switch cfg.Backend {
	case "postgres", "":
		return NewPostgresStore(cfg.DSN, cfg.CollectionName)
	case "qdrant":
		return NewQdrantStore(cfg.QdrantAddr, cfg.QdrantAPIKey, cfg.CollectionName)
	case "chromem":
		return NewChromemStore(cfg.ChromemPath, cfg.CollectionName)
	case "pinecone":
		return NewPineconeStore(cfg.PineconeAPIKey, cfg.PineconeHost, cfg.CollectionName)
	default:
		return nil, fmt.Errorf("vectorstore: unknown backend %q", cfg.Backend)
	}
}
