package pool

import "sync"

// StreamBufferSize 远端存储回源时的拷贝缓冲区大小
const StreamBufferSize = 64 * 1024

var streamBuffers = sync.Pool{
	New: func() any {
		buf := make([]byte, StreamBufferSize)
		return &buf
	},
}

// GetStreamBuffer 取出一个拷贝缓冲区，用完必须 PutStreamBuffer
func GetStreamBuffer() *[]byte {
	return streamBuffers.Get().(*[]byte)
}

// PutStreamBuffer 归还缓冲区，尺寸被改过的直接丢弃
func PutStreamBuffer(buf *[]byte) {
	if buf == nil || cap(*buf) != StreamBufferSize {
		return
	}
	*buf = (*buf)[:StreamBufferSize]
	streamBuffers.Put(buf)
}
