package utils

import (
	"log"
	"runtime/debug"
)

// SafeGo 启动后台任务，panic 只记录日志不会拖垮进程
func SafeGo(name string, fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("[SafeGo] task %s panicked: %v", name, r)
				LogIfDevf("[SafeGo] %s stack:\n%s", name, debug.Stack())
			}
		}()
		fn()
	}()
}
