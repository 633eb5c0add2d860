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

// Remote secret overlay: in a multi-replica deployment the operator may
// keep rotating credentials (the Serper/literature API keys) in a
// shared KV store rather than per-replica YAML, so a secret rotation
// doesn't require a redeploy. This mirrors the teacher's pkg/config
// multi-backend loader (file/consul/etcd/zookeeper), trimmed to a
// single-key overlay applied after the YAML decode rather than a full
// config-source abstraction — this service runs single-node (spec.md's
// "multi-node scaling" non-goal), so only the read path is needed.
package appconfig

import (
	"context"
	"fmt"
	"time"

	"github.com/go-zookeeper/zk"
	consulapi "github.com/hashicorp/consul/api"
	clientv3 "go.etcd.io/etcd/client/v3"
)

const zkSessionTimeout = 10 * time.Second

// RemoteConfig selects a KV backend to overlay onto the YAML-decoded
// Config after Load, keyed by a flat "path/key" addressing scheme
// common to all three backends.
type RemoteConfig struct {
	Backend string   `yaml:"backend"` // "" (disabled) | "consul" | "etcd" | "zookeeper"
	Addrs   []string `yaml:"addrs"`
	Prefix  string   `yaml:"prefix"` // e.g. "cortex/tools"
}

// ApplyRemoteOverrides fetches overlay values named in keys (relative to
// remote.Prefix) and returns them as a key→value map keyed by the names
// in keys; callers splice
// the results into specific Config fields (e.g. Tools.SerperAPIKey).
// A disabled or zero RemoteConfig returns an empty map, not an error.
func ApplyRemoteOverrides(ctx context.Context, remote RemoteConfig, keys []string) (map[string]string, error) {
	switch remote.Backend {
	case "":
		return map[string]string{}, nil
	case "consul":
		return fetchConsul(remote, keys)
	case "etcd":
		return fetchEtcd(ctx, remote, keys)
	case "zookeeper":
		return fetchZookeeper(remote, keys)
	default:
		return nil, fmt.Errorf("unknown remote config backend %q", remote.Backend)
	}
}

func fetchConsul(remote RemoteConfig, keys []string) (map[string]string, error) {
	addr := ""
	if len(remote.Addrs) > 0 {
		addr = remote.Addrs[0]
	}
	client, err := consulapi.NewClient(&consulapi.Config{Address: addr})
	if err != nil {
		return nil, fmt.Errorf("consul client: %w", err)
	}
	kv := client.KV()

	out := make(map[string]string, len(keys))
	for _, key := range keys {
		pair, _, err := kv.Get(remote.Prefix+"/"+key, nil)
		if err != nil {
			return nil, fmt.Errorf("consul get %s: %w", key, err)
		}
		if pair != nil {
			out[key] = string(pair.Value)
		}
	}
	return out, nil
}

func fetchEtcd(ctx context.Context, remote RemoteConfig, keys []string) (map[string]string, error) {
	client, err := clientv3.New(clientv3.Config{Endpoints: remote.Addrs})
	if err != nil {
		return nil, fmt.Errorf("etcd client: %w", err)
	}
	defer client.Close()

	out := make(map[string]string, len(keys))
	for _, key := range keys {
		resp, err := client.Get(ctx, remote.Prefix+"/"+key)
		if err != nil {
			return nil, fmt.Errorf("etcd get %s: %w", key, err)
		}
		if len(resp.Kvs) > 0 {
			out[key] = string(resp.Kvs[0].Value)
		}
	}
	return out, nil
}

func fetchZookeeper(remote RemoteConfig, keys []string) (map[string]string, error) {
	conn, _, err := zk.Connect(remote.Addrs, zkSessionTimeout)
	if err != nil {
		return nil, fmt.Errorf("zookeeper connect: %w", err)
	}
	defer conn.Close()

	out := make(map[string]string, len(keys))
	for _, key := range keys {
		data, _, err := conn.Get("/" + remote.Prefix + "/" + key)
		if err != nil {
			if err == zk.ErrNoNode {
				continue
			}
			return nil, fmt.Errorf("zookeeper get %s: %w", key, err)
		}
		out[key] = string(data)
	}
	return out, nil
}
