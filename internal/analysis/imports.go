package analysis

import (
	"strings"

	"github.com/standardbeagle/codescore/internal/types"
)

// standardLibModules is the fixed allow-list of Python standard
// library top-level modules used for import classification.
var standardLibModules = map[string]bool{
	// Text processing
	"string": true, "re": true, "difflib": true, "textwrap": true,
	"unicodedata": true, "stringprep": true, "readline": true, "rlcompleter": true,

	// Binary data
	"struct": true, "codecs": true,

	// Data types
	"datetime": true, "calendar": true, "collections": true, "heapq": true,
	"bisect": true, "array": true, "weakref": true, "types": true,
	"copy": true, "pprint": true, "reprlib": true, "enum": true,

	// Numeric
	"numbers": true, "math": true, "cmath": true, "decimal": true,
	"fractions": true, "random": true, "statistics": true,

	// Functional programming
	"itertools": true, "functools": true, "operator": true,

	// File and directory
	"pathlib": true, "fileinput": true, "stat": true, "filecmp": true,
	"tempfile": true, "glob": true, "fnmatch": true, "linecache": true,
	"shutil": true,

	// Data persistence
	"pickle": true, "copyreg": true, "shelve": true, "marshal": true,
	"dbm": true, "sqlite3": true,

	// Data compression
	"zlib": true, "gzip": true, "bz2": true, "lzma": true, "zipfile": true,
	"tarfile": true,

	// File formats
	"csv": true, "configparser": true, "netrc": true, "plistlib": true,

	// Cryptographic
	"hashlib": true, "hmac": true, "secrets": true,

	// OS interface
	"os": true, "io": true, "time": true, "argparse": true, "getopt": true,
	"logging": true, "getpass": true, "curses": true, "platform": true,
	"errno": true, "ctypes": true,

	// Concurrent execution
	"threading": true, "multiprocessing": true, "concurrent": true,
	"subprocess": true, "sched": true, "queue": true, "contextvars": true,
	"asyncio": true,

	// Networking
	"socket": true, "ssl": true, "select": true, "selectors": true,
	"signal": true, "mmap": true,

	// Internet data handling
	"email": true, "json": true, "mailbox": true, "mimetypes": true,
	"base64": true, "binascii": true, "quopri": true,

	// HTML and XML
	"html": true, "xml": true,

	// Internet protocols
	"urllib": true, "http": true, "ftplib": true, "poplib": true,
	"imaplib": true, "smtplib": true, "uuid": true, "socketserver": true,
	"xmlrpc": true,

	// Internationalization
	"gettext": true, "locale": true,

	// Development tools
	"typing": true, "pydoc": true, "doctest": true, "unittest": true,

	// Debugging and profiling
	"bdb": true, "faulthandler": true, "pdb": true, "profile": true,
	"cProfile": true, "pstats": true, "timeit": true, "trace": true,
	"tracemalloc": true,

	// Runtime services
	"sys": true, "sysconfig": true, "builtins": true, "warnings": true,
	"dataclasses": true, "contextlib": true, "abc": true, "atexit": true,
	"traceback": true, "gc": true, "inspect": true, "site": true,

	// Importing modules
	"zipimport": true, "pkgutil": true, "modulefinder": true, "runpy": true,
	"importlib": true,

	// Language services
	"ast": true, "symtable": true, "token": true, "keyword": true,
	"tokenize": true, "tabnanny": true, "py_compile": true,
	"compileall": true, "dis": true, "pickletools": true,
}

// knownThirdPartyFragments are base names of common third-party
// packages; a match classifies the import as third-party.
var knownThirdPartyFragments = []string{
	"numpy", "pandas", "matplotlib", "scipy", "sklearn",
	"requests", "flask", "django", "fastapi", "aiohttp",
	"pytest", "click", "pydantic", "sqlalchemy", "alembic",
	"celery", "redis", "boto3", "paramiko", "fabric",
	"pillow", "opencv", "tensorflow", "torch", "keras",
	"yaml", "setuptools", "wheel", "attrs", "jinja2",
}

// classifyImport decides where an imported module comes from:
// empty module or leading dot means relative; top-level name on the
// standard library allow-list means standard; a known third-party
// fragment means third-party; anything else is treated as local.
func classifyImport(module string) types.ImportClass {
	if module == "" || strings.HasPrefix(module, ".") {
		return types.ImportRelative
	}
	topLevel := module
	if idx := strings.Index(module, "."); idx != -1 {
		topLevel = module[:idx]
	}
	if standardLibModules[topLevel] {
		return types.ImportStandard
	}
	for _, fragment := range knownThirdPartyFragments {
		if topLevel == fragment {
			return types.ImportThirdParty
		}
	}
	return types.ImportLocal
}
