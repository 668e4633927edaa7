package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/golang/glog"
	"github.com/pkg/errors"

	"github.com/mqy/chatdump/auth"
	"github.com/mqy/chatdump/dumper"
	"github.com/mqy/chatdump/metrics"
	"github.com/mqy/chatdump/shutdown"
	"github.com/mqy/chatdump/source"
	"github.com/mqy/chatdump/store"
)

const (
	resumeBackendFile = "file"
	resumeBackendBolt = "bolt"

	maxPageSize = 1000
)

var (
	flagRoot           = flag.String("root", dumper.DefaultRootDir, "root dir of dialog dumps")
	flagResumeFile     = flag.String("resume-file", store.DefaultResumeFile, "resume cursors file")
	flagResumeBackend  = flag.String("resume-backend", resumeBackendFile, "resume cursors backend: file or bolt")
	flagGatewayURL     = flag.String("gateway-url", source.DefaultGatewayURL, "messaging gateway base url")
	flagGatewayTimeout = flag.Duration("gateway-timeout", 0, "gateway request timeout, 0 means none")
	flagPageSize       = flag.Int("page-size", source.DefaultPageSize, "messages per history request")
	flagFirstMatch     = flag.Bool("first-match", false, "use the first dialog when the name matches several")
	flagPidFile        = flag.String("pid-file", "chatdump.pid", "pid file")
	flagMetricsFile    = flag.String("metrics-file", "", "write prometheus text metrics here on exit")
	flagTranscript     = flag.Bool("transcript", false, "also append date,text rows to messages.csv")
)

func main() {
	// log to stderr unless told otherwise.
	_ = flag.Set("logtostderr", "true")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] <dialog-name-substring>\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	flag.Parse()

	// NOTE: os.Exit() does not call defers.
	os.Exit(run())
}

func run() int {
	defer glog.Flush()

	if v := validateFlags(); v > 0 {
		return v
	}
	query := flag.Arg(0)

	if err := savePid(*flagPidFile, os.Getpid()); err != nil {
		return errorf("pid file: %v", err)
	}
	defer func() {
		_ = os.Remove(*flagPidFile)
	}()

	creds, err := newAuthProvider().Credentials()
	if err != nil {
		return errorf("credentials: %v", err)
	}

	resume, err := openResumeStore()
	if err != nil {
		return errorf("resume store: %v", err)
	}
	defer func() {
		if err := resume.Close(); err != nil {
			glog.Errorf("error close resume store: %v", err)
		}
	}()

	src := source.NewGatewaySource(*flagGatewayURL, creds, *flagGatewayTimeout)
	coord := shutdown.NewCoordinator(resume.Save)
	m := metrics.NewDump()

	engine := dumper.NewEngine(&dumper.Config{
		RootDir:    *flagRoot,
		PageSize:   *flagPageSize,
		FirstMatch: *flagFirstMatch,
		Transcript: *flagTranscript,
	}, src, resume, coord, m)

	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	defer signal.Stop(sigCh)
	go watchSignals(sigCh, coord)

	glog.Infof("`CTRL+c` or `kill %d` to stop after the current message", os.Getpid())

	summary, err := engine.Run(context.Background(), query)

	if *flagMetricsFile != "" {
		if werr := m.WriteTextfile(*flagMetricsFile); werr != nil {
			glog.Errorf("error write metrics file: %v", werr)
		}
	}

	return exitStatus(query, summary, err, coord)
}

// exitStatus is the signal number once a stop was requested, even if the stop surfaced
// as a cancelled request; otherwise 1 on error and 0 on completion.
func exitStatus(query string, summary *dumper.Summary, err error, coord *shutdown.Coordinator) int {
	if coord.Stopped() {
		if err != nil {
			glog.Warningf("dump %q stopped: %v", query, err)
		}
		return exitCode(coord.Signal())
	}
	if err != nil {
		return errorf("dump %q: %v", query, err)
	}
	if summary != nil && summary.Interrupted {
		return exitCode(coord.Signal())
	}
	return 0
}

func newAuthProvider() auth.IProvider {
	return auth.NewEnvProvider()
}

// watchSignals turns the first signal into a graceful stop. The second one saves
// what has been published so far and exits at once.
func watchSignals(sigCh <-chan os.Signal, coord *shutdown.Coordinator) {
	for sig := range sigCh {
		if coord.Stop(sig) {
			glog.Infof("received signal `%s`, stopping after the current message", sig.String())
			continue
		}
		glog.Warningf("received signal `%s` again, exit now", sig.String())
		if err := coord.Flush(); err != nil {
			glog.Errorf("error save resume cursors: %v", err)
		}
		glog.Flush()
		os.Exit(exitCode(sig))
	}
}

func exitCode(sig os.Signal) int {
	if s, ok := sig.(syscall.Signal); ok {
		return int(s)
	}
	return 1
}

func openResumeStore() (store.IResumeStore, error) {
	switch *flagResumeBackend {
	case resumeBackendBolt:
		return store.NewBoltStore(*flagResumeFile)
	default:
		return store.NewFileStore(*flagResumeFile), nil
	}
}

func validateFlags() int {
	if flag.NArg() != 1 {
		flag.Usage()
		return errorf("expect exactly one dialog name, got %d args", flag.NArg())
	}
	if strings.TrimSpace(flag.Arg(0)) == "" {
		return errorf("dialog name is required")
	}
	if *flagRoot == "" {
		return errorf("--root is required")
	}
	if *flagResumeFile == "" {
		return errorf("--resume-file is required")
	}
	if *flagResumeBackend != resumeBackendFile && *flagResumeBackend != resumeBackendBolt {
		return errorf("invalid --resume-backend `%s`, expect %s or %s", *flagResumeBackend,
			resumeBackendFile, resumeBackendBolt)
	}
	if *flagGatewayURL == "" {
		return errorf("--gateway-url is required")
	}
	if *flagGatewayTimeout < 0 {
		return errorf("--gateway-timeout MUST not be negative")
	}
	if *flagPageSize < 1 || *flagPageSize > maxPageSize {
		return errorf("invalid --page-size, expect in range [1, %d]", maxPageSize)
	}
	if *flagPidFile == "" {
		return errorf("--pid-file is required")
	}
	return 0
}

func errorf(fmt string, args ...interface{}) int {
	glog.Errorf(fmt, args...)
	return 1
}

// savePid claims the pid file. A file naming a live process means another dump owns
// this workspace; a stale one is taken over.
func savePid(name string, pid int) error {
	content, err := os.ReadFile(name)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return errors.Wrapf(err, "read `%s`", name)
	case len(strings.TrimSpace(string(content))) > 0:
		oldPid, err := strconv.Atoi(strings.TrimSpace(string(content)))
		if err != nil {
			return errors.Errorf("`%s` holds %q, not a pid", name, content)
		}
		if processAlive(oldPid) {
			return errors.Errorf("another chatdump (pid %d) is running in this workspace", oldPid)
		}
		glog.Infof("taking over stale pid file `%s` of pid %d", name, oldPid)
	}

	if err := os.WriteFile(name, []byte(strconv.Itoa(pid)), 0600); err != nil {
		return errors.Wrapf(err, "write `%s`", name)
	}
	glog.V(1).Infof("pid %d written to `%s`", pid, name)
	return nil
}

func processAlive(pid int) bool {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	defer proc.Release()
	return proc.Signal(syscall.Signal(0)) == nil
}
