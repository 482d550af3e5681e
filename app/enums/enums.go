// Package enums provides type-safe enumeration types for the terminal and its web interface.
//
// The enum types are defined as unexported integer types (e.g., backend int) in this file,
// and the go:generate directives invoke go-pkgz/enum to create the exported types with
// all the methods in separate files (*_enum.go).
//
// For each enum type, the generator creates:
//   - An exported struct type (e.g., Backend) with name and value fields
//   - String() method for string representation
//   - Parse functions (e.g., ParseBackend) for string-to-enum conversion
//   - Database methods (Scan/Value) for SQL compatibility
//   - Text marshaling methods (MarshalText/UnmarshalText) for JSON and flags
//   - Exported constants for each enum value (e.g., BackendSqlite, ConfirmFinish)
//
// Usage:
//
//	backend, err := enums.ParseBackend("badger")
//	if err != nil {
//	    // handle invalid input
//	}
//	fmt.Println(backend.String()) // "badger"
//
// To regenerate the enum types after modifications:
//
//	go generate ./app/enums
//
// Note: The unexported type definitions below are only used by the generator.
// All actual code should use the generated exported types.
package enums

//go:generate go run github.com/go-pkgz/enum@latest -type backend -lower
//go:generate go run github.com/go-pkgz/enum@latest -type theme -lower
//go:generate go run github.com/go-pkgz/enum@latest -type confirm -lower
//go:generate go run github.com/go-pkgz/enum@latest -type scanResult -lower

// backend represents the local key/value storage backend.
// This is an unexported type used only as input for the code generator.
type backend int

const (
	backendMemory backend = iota
	backendFile
	backendSqlite
	backendBadger
	backendRedis
)

// theme represents UI themes.
// This is an unexported type used only as input for the code generator.
type theme int

const (
	themeLight theme = iota
	themeDark
)

// confirm represents an action waiting for operator confirmation.
// This is an unexported type used only as input for the code generator.
type confirm int

const (
	confirmNone confirm = iota
	confirmFinish
	confirmDelete
	confirmLogout
	confirmResume
)

// scanResult represents the outcome of a successful order scan.
// This is an unexported type used only as input for the code generator.
type scanResult int

const (
	scanResultStarted scanResult = iota
	scanResultResume
	scanResultUnknown
)
