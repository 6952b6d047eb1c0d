package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"goftp.io/server/core"
)

type fileinfo struct {
	os.FileInfo
}

func (fileinfo) Owner() string {
	return "root"
}

func (fileinfo) Group() string {
	return "root"
}

// driver implements an upload-only FTP file system.
type driver struct {
	targetdir    string
	log          logrus.FieldLogger
	OnFileUpload func(filename string)
}

func (driver) Stat(filename string) (core.FileInfo, error) {
	fi, err := os.Lstat(".")
	if err != nil {
		return nil, err
	}

	return fileinfo{fi}, nil
}

func (driver) ListDir(string, func(core.FileInfo) error) error {
	return errors.New("not implemented")
}

func (driver) DeleteDir(string) error {
	return errors.New("not implemented")
}

func (driver) DeleteFile(string) error {
	return errors.New("not implemented")
}

func (driver) Rename(string, string) error {
	return errors.New("not implemented")
}

func (driver) MakeDir(string) error {
	return errors.New("not implemented")
}

func (driver) GetFile(string, int64) (int64, io.ReadCloser, error) {
	return 0, nil, errors.New("not implemented")
}

const uploadTimeFormat = "20060102-150405"

// PutFile stores an uploaded file under a timestamp-based name, keeping the
// original extension so the processor can tell PDFs and images apart.
func (d driver) PutFile(path string, rd io.Reader, appendData bool) (int64, error) {
	name := time.Now().Format(uploadTimeFormat) + strings.ToLower(filepath.Ext(path))
	filename := filepath.Join(d.targetdir, name)

	f, err := os.Create(filename)
	if err != nil {
		d.log.Warnf("PutFile: create: %v", err)

		return 0, fmt.Errorf("create: %w", err)
	}

	n, err := io.Copy(f, rd)
	if err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())

		d.log.Warnf("PutFile: copy: %v", err)

		return n, fmt.Errorf("copy: %w", err)
	}

	err = f.Close()
	if err != nil {
		d.log.Warnf("PutFile: close: %v", err)

		return n, fmt.Errorf("close: %w", err)
	}

	d.OnFileUpload(filename)

	return n, nil
}

// factory implements a factory for creating an FTP file system using driver.
type factory struct {
	targetdir    string
	log          logrus.FieldLogger
	OnFileUpload func(filename string)
}

func (f factory) NewDriver() (core.Driver, error) {
	return driver{targetdir: f.targetdir, log: f.log, OnFileUpload: f.OnFileUpload}, nil // nolint:gosimple
}

type allowAll struct{}

func (allowAll) CheckPasswd(string, string) (bool, error) {
	return true, nil
}

// FTPServer implements an FTP server which only supports uploading files,
// the usual transport of document scanners. Uploads are placed in TargetDir
// and the callback OnFileUpload is run after an upload completed.
type FTPServer struct {
	TargetDir string
	Verbose   bool
	Bind      string

	OnFileUpload func(filename string)

	log logrus.FieldLogger
}

// SetLogger updates the logger to use.
func (srv *FTPServer) SetLogger(logger logrus.FieldLogger) {
	srv.log = logger.WithField("component", "ftp")
}

// Run starts the server. When ctx is cancelled, the listener is stopped.
func (srv *FTPServer) Run(ctx context.Context) error {
	serverOpts := &core.ServerOpts{
		WelcomeMessage: "scantext OCR service",
		Auth:           allowAll{},
		Factory: factory{
			targetdir:    srv.TargetDir,
			log:          srv.log,
			OnFileUpload: srv.OnFileUpload,
		},
	}

	if !srv.Verbose {
		serverOpts.Logger = &core.DiscardLogger{}
	}

	ftpServer := core.NewServer(serverOpts)

	var listener net.Listener

	listener, err := net.Listen("tcp", srv.Bind)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}

	srv.log.Infof("FTP server listening on %v", srv.Bind)

	ch := make(chan error, 1)

	go func() {
		ch <- ftpServer.Serve(listener)
	}()

	select {
	case err := <-ch:
		lerr := listener.Close()
		if err == nil {
			err = lerr
		}

		return err
	case <-ctx.Done():
		return listener.Close()
	}
}
