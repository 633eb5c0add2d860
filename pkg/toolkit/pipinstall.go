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

package toolkit

import (
	"context"
	"fmt"
	"strings"
	"time"
)

const pipInstallTimeout = 5 * time.Minute

// pipInstallAllowlist is the closed set of installable package base
// names, normative per spec §6, materialized as a compile-time set.
var pipInstallAllowlist = map[string]struct{}{
	"numpy": {}, "pandas": {}, "scipy": {}, "statsmodels": {}, "matplotlib": {}, "seaborn": {},
	"plotly": {}, "bokeh": {}, "altair": {}, "pygal": {}, "scikit-learn": {}, "sklearn": {},
	"xgboost": {}, "lightgbm": {}, "catboost": {}, "torch": {}, "torchvision": {}, "torchaudio": {},
	"tensorflow": {}, "keras": {}, "transformers": {}, "datasets": {}, "accelerate": {},
	"nltk": {}, "spacy": {}, "gensim": {}, "jieba": {}, "snownlp": {},
	"pillow": {}, "opencv-python": {}, "opencv-python-headless": {}, "imageio": {},
	"requests": {}, "httpx": {}, "aiohttp": {}, "urllib3": {},
	"beautifulsoup4": {}, "bs4": {}, "lxml": {}, "html5lib": {}, "cssselect": {}, "pyquery": {}, "parsel": {},
	"openpyxl": {}, "xlrd": {}, "xlwt": {}, "python-docx": {}, "pypdf2": {}, "pdfplumber": {}, "python-pptx": {},
	"csvkit": {}, "sqlalchemy": {}, "pymysql": {}, "psycopg2-binary": {}, "redis": {}, "pymongo": {},
	"tqdm": {}, "loguru": {}, "rich": {}, "typer": {}, "click": {}, "pydantic": {}, "python-dotenv": {},
	"python-dateutil": {}, "pytz": {}, "sympy": {}, "networkx": {}, "igraph": {}, "faker": {},
	"arrow": {}, "pendulum": {}, "humanize": {}, "tabulate": {}, "prettytable": {}, "colorama": {},
}

// PipInstallArgs is the pip_install tool's argument shape.
type PipInstallArgs struct {
	Packages []string `json:"packages" jsonschema:"required,description=Package specifiers to install, e.g. numpy==1.26.0"`
}

// Installer runs the actual package install once every name has cleared
// the allow-list check. It exists as an interface so tests can stub it
// without invoking a real package manager.
type Installer interface {
	Install(ctx context.Context, packages []string) error
}

// NewPipInstall builds the privileged pip_install tool. If authorized
// is false it refuses at dispatch without consulting install or the
// allow-list, matching the capability-at-construction model.
func NewPipInstall(authorized bool, install Installer) Tool {
	return NewFunc[PipInstallArgs]("pip_install",
		"Install Python packages from a closed allow-list into the notebook's environment.",
		func(ctx context.Context, args PipInstallArgs) Result {
			if !authorized {
				return Result{Success: false, Output: "pip_install requires authorization", Error: "authorization_required",
					Data: map[string]any{"requires_authorization": true}}
			}

			var allowed, blocked []string
			for _, spec := range args.Packages {
				base := normalizePackageName(spec)
				if _, ok := pipInstallAllowlist[base]; ok {
					allowed = append(allowed, spec)
				} else {
					blocked = append(blocked, base)
				}
			}
			if len(blocked) > 0 {
				return Result{
					Success: false,
					Output:  fmt.Sprintf("packages not allowed: %s", strings.Join(blocked, ", ")),
					Error:   "packages_not_allowed",
					Data:    map[string]any{"blocked": blocked},
				}
			}
			if len(allowed) == 0 {
				return Ok("no packages requested", nil)
			}

			installCtx, cancel := context.WithTimeout(ctx, pipInstallTimeout)
			defer cancel()
			if err := install.Install(installCtx, allowed); err != nil {
				return Fail("tool_external", fmt.Sprintf("install failed: %v", err))
			}
			return Ok(fmt.Sprintf("installed: %s", strings.Join(allowed, ", ")), map[string]any{"installed": allowed})
		})
}

// normalizePackageName strips version specifiers (==, >=, <=, ~=, >, <)
// and surrounding whitespace, lower-casing the result for allow-list
// comparison.
func normalizePackageName(spec string) string {
	spec = strings.TrimSpace(spec)
	for _, sep := range []string{"==", ">=", "<=", "~=", "!=", ">", "<", "[", " "} {
		if idx := strings.Index(spec, sep); idx >= 0 {
			spec = spec[:idx]
		}
	}
	return strings.ToLower(strings.TrimSpace(spec))
}
