// Package preflight provides readiness checks for the external service and
// filesystem paths the upscale pipeline depends on.
//
// These checks run in two contexts:
//   - The CLI "upscale check" command runs RunAll to display readiness
//     before a long multi-pass run is started.
//   - Individual check functions back the stage health checks where a
//     cheaper targeted probe is enough.
package preflight
