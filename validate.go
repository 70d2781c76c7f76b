package atlas

import (
	"context"
	"path/filepath"
	"runtime"
	"sort"

	"github.com/b1naryth1ef/atlas/logging"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ValidateLibrary checks every file of every group under root. Invalid files
// are reported in the result, only failures to list the library are errors.
func ValidateLibrary(ctx context.Context, root string, opts ValidateOpts) (*ValidateResult, error) {
	groups, err := ListLayerGroups(root)
	if err != nil {
		return nil, err
	}

	log := logging.L().Named("validate")

	concurrency := opts.Concurrency
	if concurrency == 0 {
		concurrency = runtime.GOMAXPROCS(0)
	}

	result := ValidateResult{Files: []FileResult{}}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for _, group := range groups {
		for _, file := range group.Files {
			rel := filepath.Join(group.GroupName, file)
			g.Go(func() error {
				if err := ctx.Err(); err != nil {
					return err
				}

				res := validateFile(root, rel)
				if res.Error != "" {
					log.Warn("invalid layer file", zap.String("path", rel), zap.String("error", res.Error))
				}

				result.Lock()
				result.Files = append(result.Files, res)
				result.Unlock()
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(result.Files, func(i, j int) bool {
		return result.Files[i].Path < result.Files[j].Path
	})

	return &result, nil
}

func validateFile(root, rel string) FileResult {
	res := FileResult{Path: filepath.ToSlash(rel)}

	data, typ, err := readGeoJSON(root, rel)
	if err != nil {
		res.Error = err.Error()
		return res
	}

	res.Type = typ
	res.Bytes = len(data)
	return res
}
