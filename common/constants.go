package common

const (
	SrcFileExtension = ".pl"
	ProjectFileName  = "plang-mod.toml"
	PlangVersion     = "0.1.0"
)

// Output formats supported by the compiler.
const (
	FormatWAT  = "wat"
	FormatLLVM = "llvm"
)

// NoReturnType is the name of the return type of functions which do not return
// a value.
const NoReturnType = "()"

// StringTypeName is the name of the builtin type string literals construct.
const StringTypeName = "String"
