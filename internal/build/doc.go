// Package build turns an mfext project into a runnable dist directory.
//
// A build runs up to four steps, always in this order:
//
//   - discover: scan the app directory and write the routes manifest
//   - client: copy public files, write the browser bootstrap script,
//     compile the client main to WebAssembly and write the client manifest
//   - rsc: generate the component registry (zz_components_gen.go) in the
//     app directory so every discovered identifier can be imported
//   - ssr: compile the server main into dist/server
//
// TargetAll runs every step. Single targets that depend on the routes
// manifest (rsc and ssr) run discover first when the manifest is missing.
//
// # Output Structure
//
//	dist/
//	├── app-routes-manifest.json
//	├── client-manifest.json
//	├── server                 # compiled server binary
//	└── public/                # served under /static
//	    ├── client.js
//	    ├── client.wasm        # when the client main exists
//	    ├── wasm_exec.js
//	    └── ...                # copied from public/
package build
