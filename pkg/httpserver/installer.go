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

package httpserver

import (
	"context"

	"github.com/arborly/cortex/pkg/kernel"
	"github.com/arborly/cortex/pkg/notebook"
)

// noopInstaller is the pip_install tool's Installer: this Go-native
// re-grounding has no Python package manager to shell out to, so
// "install" is a no-op that always succeeds for allow-listed packages —
// callers must issue a fresh execute that imports the package, per
// spec.md §9's resolved open question.
type noopInstaller struct{}

func (noopInstaller) Install(ctx context.Context, packages []string) error { return nil }

// notebookPatchFromResult turns a kernel execution outcome into the
// CellPatch the notebook store expects.
func notebookPatchFromResult(result kernel.ExecuteResult) notebook.CellPatch {
	count := result.ExecutionCount
	return notebook.CellPatch{
		Outputs:        result.Outputs,
		ExecutionCount: &count,
	}
}
