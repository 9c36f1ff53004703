package logger

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
)

var (
	User *UserLogger // Clean messages for users (stdout) with emojis
	Op   *OpLogger   // Detailed operational logs (stderr) without emojis
)

// init ensures loggers are never nil
func init() {
	l := GetLogger().GetInternalLogger()
	User = &UserLogger{logger: l}
	Op = &OpLogger{logger: l}
}

// UserLogger writes one line per run or invocation event, prefixed by an emoji
type UserLogger struct {
	logger *logrus.Logger
}

// OpLogger writes key=value diagnostics
type OpLogger struct {
	logger *logrus.Logger
}

type mark struct {
	emoji string
	level logrus.Level
}

var (
	markPlain     = mark{"", logrus.InfoLevel}
	markError     = mark{"❌", logrus.ErrorLevel}
	markWarn      = mark{"⚠️", logrus.WarnLevel}
	markStarting  = mark{"🚀", logrus.InfoLevel}
	markDispatch  = mark{"▶️", logrus.InfoLevel}
	markSuccess   = mark{"✅", logrus.InfoLevel}
	markSkipped   = mark{"⏭️", logrus.InfoLevel}
	markCancelled = mark{"🛑", logrus.WarnLevel}
)

func (u *UserLogger) logf(m mark, format string, args ...interface{}) {
	fields := logrus.Fields{"log_type": string(UserLog)}
	if m.emoji != "" {
		fields["emoji"] = m.emoji
	}
	u.logger.WithFields(fields).Logf(m.level, format, args...)
}

func (u *UserLogger) Info(msg string) { u.logf(markPlain, "%s", msg) }

func (u *UserLogger) Infof(format string, args ...interface{}) { u.logf(markPlain, format, args...) }

func (u *UserLogger) Errorf(format string, args ...interface{}) { u.logf(markError, format, args...) }

func (u *UserLogger) Warnf(format string, args ...interface{}) { u.logf(markWarn, format, args...) }

// Startingf announces a workflow run
func (u *UserLogger) Startingf(format string, args ...interface{}) {
	u.logf(markStarting, format, args...)
}

// Dispatchf announces an invocation leaving READY
func (u *UserLogger) Dispatchf(format string, args ...interface{}) {
	u.logf(markDispatch, format, args...)
}

func (u *UserLogger) Successf(format string, args ...interface{}) {
	u.logf(markSuccess, format, args...)
}

// Skippedf reports an invocation a short-circuit made unnecessary
func (u *UserLogger) Skippedf(format string, args ...interface{}) {
	u.logf(markSkipped, format, args...)
}

// Cancelledf reports an invocation dropped after an unrescued failure
func (u *UserLogger) Cancelledf(format string, args ...interface{}) {
	u.logf(markCancelled, format, args...)
}

// WithFields returns an operational entry carrying fields. The map is not modified.
func (o *OpLogger) WithFields(fields map[string]interface{}) *logrus.Entry {
	f := make(logrus.Fields, len(fields)+1)
	for k, v := range fields {
		f[k] = v
	}
	f["log_type"] = string(OpLog)
	return o.logger.WithFields(f)
}

// Setup configures level, format and routing. LOG_MODE and LOG_FORMAT
// override the flags.
func Setup(verbose bool, jsonLogs bool, quiet bool) {
	SetupWithWriters(verbose, jsonLogs, quiet, os.Stdout, os.Stderr)
}

// SetupWithWriters is Setup with explicit user and operational writers
func SetupWithWriters(verbose bool, jsonLogs bool, quiet bool, userOut, opOut io.Writer) {
	switch os.Getenv("LOG_MODE") {
	case "quiet":
		quiet, verbose = true, false
	case "verbose", "debug":
		quiet, verbose = false, true
	}
	switch os.Getenv("LOG_FORMAT") {
	case "json":
		jsonLogs = true
	case "text":
		jsonLogs = false
	}

	level := logrus.InfoLevel
	switch {
	case quiet:
		level = logrus.ErrorLevel
	case verbose:
		level = logrus.DebugLevel
	}

	hook := NewOutputRouterHook(userOut, opOut)
	switch {
	case jsonLogs:
		hook.User.Formatter = &logrus.JSONFormatter{}
		hook.Op.Formatter = &logrus.JSONFormatter{}
	case verbose:
		hook.Op.Formatter = &logrus.TextFormatter{FullTimestamp: true, ForceColors: isTerminal(opOut)}
	default:
		hook.Op.Formatter = &CLIFormatter{DisableTimestamp: true, DisableColors: !isTerminal(opOut)}
	}

	ul := GetLogger()
	internal := ul.GetInternalLogger()
	internal.ReplaceHooks(make(logrus.LevelHooks))
	// Output is handled by the hook
	ul.Configure(io.Discard, level, &logrus.TextFormatter{})
	internal.AddHook(hook)

	User = &UserLogger{logger: internal}
	Op = &OpLogger{logger: internal}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}
