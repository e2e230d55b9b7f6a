package log

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/nknorg/ballot/config"
)

const (
	namePrefix = "LEVEL"
	callDepth  = 3
	mb         = 1024 * 1024
)

const (
	Red    = "0;31"
	Green  = "0;32"
	Yellow = "0;33"
	Pink   = "1;35"
)

const (
	debugLog = iota
	infoLog
	warnLog
	errorLog
	maxLevelLog
)

var (
	levels = map[int]string{
		debugLog: Color(Pink, "[DEBUG]"),
		infoLog:  Color(Green, "[INFO ]"),
		warnLog:  Color(Yellow, "[WARN ]"),
		errorLog: Color(Red, "[ERROR]"),
	}
	Stdout = os.Stdout
)

func Color(code, msg string) string {
	return fmt.Sprintf("\033[%sm%s\033[m", code, msg)
}

func GetGID() uint64 {
	var buf [64]byte
	b := buf[:runtime.Stack(buf[:], false)]
	b = bytes.TrimPrefix(b, []byte("goroutine "))
	b = b[:bytes.IndexByte(b, ' ')]
	n, _ := strconv.ParseUint(string(b), 10, 64)
	return n
}

// Log is the node logger. WebLog receives the dashboard access log. Both write
// to stdout only until Init is called.
var (
	Log      = newLogger(Stdout, "", log.Ldate|log.Lmicroseconds, infoLog, nil)
	WebLog   = newLogger(io.Discard, "", log.Ldate|log.Lmicroseconds, infoLog, nil)
	initOnce sync.Once
)

func LevelName(level int) string {
	if name, ok := levels[level]; ok {
		return name
	}
	return namePrefix + strconv.Itoa(level)
}

type Logger struct {
	sync.RWMutex
	level   int
	logger  *log.Logger
	logFile *os.File
}

func newLogger(out io.Writer, prefix string, flag, level int, file *os.File) *Logger {
	return &Logger{
		level:   level,
		logger:  log.New(out, prefix, flag),
		logFile: file,
	}
}

func (l *Logger) reset(out io.Writer, prefix string, flag, level int, file *os.File) {
	l.Lock()
	defer l.Unlock()
	l.closeLogFile()
	l.level = level
	l.logger = log.New(out, prefix, flag)
	l.logFile = file
}

func (l *Logger) SetDebugLevel(level int) error {
	if level >= maxLevelLog || level < 0 {
		return errors.New("Invalid Debug Level")
	}

	l.Lock()
	defer l.Unlock()

	l.level = level
	return nil
}

func (l *Logger) Output(level int, a ...interface{}) error {
	l.RLock()
	defer l.RUnlock()

	if level >= l.level {
		gidStr := strconv.FormatUint(GetGID(), 10)
		a = append([]interface{}{LevelName(level), "GID", gidStr + ","}, a...)
		return l.logger.Output(callDepth, fmt.Sprintln(a...))
	}
	return nil
}

func (l *Logger) Outputf(level int, format string, v ...interface{}) error {
	l.RLock()
	defer l.RUnlock()

	if level >= l.level {
		v = append([]interface{}{LevelName(level), "GID", GetGID()}, v...)
		return l.logger.Output(callDepth, fmt.Sprintf("%s %s %d, "+format+"\n", v...))
	}
	return nil
}

func (l *Logger) Debug(a ...interface{}) {
	l.Output(debugLog, a...)
}

func (l *Logger) Debugf(format string, a ...interface{}) {
	l.Outputf(debugLog, format, a...)
}

func (l *Logger) Info(a ...interface{}) {
	l.Output(infoLog, a...)
}

func (l *Logger) Infof(format string, a ...interface{}) {
	l.Outputf(infoLog, format, a...)
}

func (l *Logger) Warning(a ...interface{}) {
	l.Output(warnLog, a...)
}

func (l *Logger) Warningf(format string, a ...interface{}) {
	l.Outputf(warnLog, format, a...)
}

func (l *Logger) Error(a ...interface{}) {
	l.Output(errorLog, a...)
}

func (l *Logger) Errorf(format string, a ...interface{}) {
	l.Outputf(errorLog, format, a...)
}

func callerInfo() string {
	pc := make([]uintptr, 10)
	runtime.Callers(3, pc)
	f := runtime.FuncForPC(pc[0])
	if f == nil {
		return ""
	}
	file, line := f.FileLine(pc[0])
	funcName := strings.TrimPrefix(filepath.Ext(f.Name()), ".")
	return funcName + "() " + filepath.Base(file) + ":" + strconv.Itoa(line)
}

func Debug(a ...interface{}) {
	if debugLog < Log.level {
		return
	}
	Log.Debug(append([]interface{}{callerInfo()}, a...)...)
}

func Debugf(format string, a ...interface{}) {
	if debugLog < Log.level {
		return
	}
	Log.Debugf("%s "+format, append([]interface{}{callerInfo()}, a...)...)
}

func Info(a ...interface{}) {
	Log.Info(a...)
}

func Warning(a ...interface{}) {
	Log.Warning(a...)
}

func Error(a ...interface{}) {
	Log.Error(a...)
}

func Infof(format string, a ...interface{}) {
	Log.Infof(format, a...)
}

func Warningf(format string, a ...interface{}) {
	Log.Warningf(format, a...)
}

func Errorf(format string, a ...interface{}) {
	Log.Errorf(format, a...)
}

func FileOpen(path string, name string) (*os.File, error) {
	if fi, err := os.Stat(path); err == nil {
		if !fi.IsDir() {
			return nil, fmt.Errorf("%s is not a directory", path)
		}
	} else {
		if err := os.MkdirAll(path, 0766); err != nil {
			return nil, err
		}
	}

	currenttime := time.Now().Format("2006-01-02_15.04.05")

	logfile, err := os.OpenFile(filepath.Join(path, currenttime+"_"+name+".log"), os.O_RDWR|os.O_CREATE, 0666)
	if err != nil {
		return nil, err
	}
	return logfile, nil
}

func getWritterAndFile(name string, outputs ...interface{}) (io.Writer, *os.File, error) {
	writers := []io.Writer{}
	var logFile *os.File
	var err error
	if len(outputs) == 0 {
		writers = append(writers, io.Discard)
	} else {
		for _, o := range outputs {
			switch o := o.(type) {
			case string:
				logFile, err = FileOpen(o, name)
				if err != nil {
					return nil, nil, fmt.Errorf("open log file %v failed: %v", o, err)
				}
				writers = append(writers, logFile)
			case *os.File:
				writers = append(writers, o)
			default:
				return nil, nil, fmt.Errorf("invalid log location %v", o)
			}
		}
	}
	return io.MultiWriter(writers...), logFile, nil
}

// Init redirects Log and WebLog to files under config.Parameters.LogPath and
// starts rolling them over once they exceed MaxLogFileSize.
func Init() error {
	var err error
	initOnce.Do(func() {
		var writter, webWritter io.Writer
		var file, webFile *os.File
		writter, file, err = getWritterAndFile("LOG", config.Parameters.LogPath, Stdout)
		if err != nil {
			return
		}
		webWritter, webFile, err = getWritterAndFile("WEBLOG", config.Parameters.LogPath)
		if err != nil {
			return
		}

		Log.reset(writter, "", log.Ldate|log.Lmicroseconds, config.Parameters.LogLevel, file)
		WebLog.reset(webWritter, "", log.Ldate|log.Lmicroseconds, config.Parameters.LogLevel, webFile)

		go func() {
			for {
				time.Sleep(config.LogFileCheckInterval())
				if Log.needNewLogFile() {
					writter, file, err := getWritterAndFile("LOG", config.Parameters.LogPath, Stdout)
					if err != nil {
						Log.Errorf("Roll over log file error: %v", err)
						continue
					}
					Log.reset(writter, "", log.Ldate|log.Lmicroseconds, config.Parameters.LogLevel, file)
				}
				if WebLog.needNewLogFile() {
					writter, file, err := getWritterAndFile("WEBLOG", config.Parameters.LogPath)
					if err != nil {
						Log.Errorf("Roll over web log file error: %v", err)
						continue
					}
					WebLog.reset(writter, "", log.Ldate|log.Lmicroseconds, config.Parameters.LogLevel, file)
				}
			}
		}()
	})
	return err
}

func (l *Logger) GetLogFileSize() (int64, error) {
	l.RLock()
	defer l.RUnlock()

	if l.logFile == nil {
		return 0, errors.New("no log file")
	}
	f, e := l.logFile.Stat()
	if e != nil {
		return 0, e
	}
	return f.Size(), nil
}

func (l *Logger) needNewLogFile() bool {
	logFileSize, err := l.GetLogFileSize()
	if err != nil {
		return false
	}
	return logFileSize > int64(config.Parameters.MaxLogFileSize)*mb
}

func (l *Logger) closeLogFile() error {
	var err error
	if l.logFile != nil {
		err = l.logFile.Close()
	}
	return err
}
