package store

import (
	"context"
	"database/sql/driver"
	"errors"
	"io"
	"net"

	"github.com/go-sql-driver/mysql"
)

// MySQL 错误号分类。
// 参考 https://dev.mysql.com/doc/mysql-errors/8.0/en/server-error-reference.html
const (
	mysqlErrProcDoesNotExist uint16 = 1305 // PROCEDURE does not exist
	mysqlErrProcAccessDenied uint16 = 1370 // execute command denied
	mysqlErrNoDB             uint16 = 1046 // no database selected

	mysqlErrLockDeadlock    uint16 = 1213
	mysqlErrLockWaitTimeout uint16 = 1205
	mysqlErrServerGone      uint16 = 2006
	mysqlErrServerLost      uint16 = 2013
)

// IsProcedureUnavailable 判断错误是否意味着“存储过程不可用”：
// 过程不存在、无执行权限、或库尚未建出来。这类错误触发降级而不是上抛。
func IsProcedureUnavailable(err error) bool {
	var me *mysql.MySQLError
	if !errors.As(err, &me) {
		return false
	}
	switch me.Number {
	case mysqlErrProcDoesNotExist, mysqlErrProcAccessDenied, mysqlErrNoDB:
		return true
	}
	return false
}

// IsTransientStoreError 判断是否为基础设施层面的瞬时错误（连接断开、死锁、
// 锁等待超时、上下文超时等）。这类错误用 fallback 路径重试一次。
func IsTransientStoreError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, mysql.ErrInvalidConn) ||
		errors.Is(err, io.EOF) ||
		errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	if errors.As(err, &ne) {
		return true
	}
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		switch me.Number {
		case mysqlErrLockDeadlock, mysqlErrLockWaitTimeout, mysqlErrServerGone, mysqlErrServerLost:
			return true
		}
	}
	return false
}
