// Package pkg provides the core libraries for smfinstall, a command line
// installer that downloads and unpacks a Simple Machines Forum release into
// the current directory.
//
// # Architecture
//
// One installation run flows through five stages:
//
//	metadata URL → catalog → resolver → mirror → archive
//	                 ↓           ↓          ↓         ↓
//	             versions     answers   package   extracted
//	             mirrors     (cached)    files      files
//	             languages
//
// The [installer] package drives the stages in order and collects the
// per-file outcomes into a single result.
//
// # Quick Start
//
//	src := catalog.NewSource(catalog.DefaultURL, httputil.NewClient(time.Minute), logger)
//	res := resolver.New(dir, decisions, src, prompt.New(reader, os.Stdout), logger)
//	fetcher := mirror.NewFetcher(dir, mirror.NewHTTPGetter(), os.Stdout, logger)
//	runner := installer.NewRunner(res, fetcher, archive.NewExtractor(dir, os.Stdout, logger), logger)
//
//	result, err := runner.Run(ctx)
//	if errors.Is(err, resolver.ErrUserExit) {
//	    return nil
//	}
//
// # Package Overview
//
// [catalog] parses the plain-text mirror information document into
// versions, mirrors and language lists.
//
// [resolver] asks the user which version, mode and languages to install.
// Each answer is remembered in a [cache.Cache] so an interrupted run resumes
// where it stopped.
//
// [mirror] downloads every package, trying each mirror in one shuffled order
// until a download succeeds. Per-host circuit breakers stop repeated
// requests to a mirror that is down.
//
// [archive] verifies and unpacks the downloaded zip files.
//
// Supporting packages:
//
//   - [cache]: answer storage with optional expiry
//   - [prompt]: line-oriented questions with yes/no defaults
//   - [httputil]: DNS-caching client, status mapping and retry
//   - [errors]: coded errors and path validation
//   - [observability]: hooks for debug logging of each stage
//   - [buildinfo]: version information set at build time
//
// [catalog]: https://pkg.go.dev/github.com/matzehuels/smfinstall/pkg/catalog
// [resolver]: https://pkg.go.dev/github.com/matzehuels/smfinstall/pkg/resolver
// [mirror]: https://pkg.go.dev/github.com/matzehuels/smfinstall/pkg/mirror
// [archive]: https://pkg.go.dev/github.com/matzehuels/smfinstall/pkg/archive
// [installer]: https://pkg.go.dev/github.com/matzehuels/smfinstall/pkg/installer
// [cache]: https://pkg.go.dev/github.com/matzehuels/smfinstall/pkg/cache
// [cache.Cache]: https://pkg.go.dev/github.com/matzehuels/smfinstall/pkg/cache#Cache
// [prompt]: https://pkg.go.dev/github.com/matzehuels/smfinstall/pkg/prompt
// [httputil]: https://pkg.go.dev/github.com/matzehuels/smfinstall/pkg/httputil
// [errors]: https://pkg.go.dev/github.com/matzehuels/smfinstall/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/smfinstall/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/smfinstall/pkg/buildinfo
package pkg
