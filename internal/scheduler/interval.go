package scheduler

import (
	"context"
	"time"

	"propguard/internal/logger"
)

// 中文说明：
// 固定周期任务执行器。task panic 被吃掉并记日志，循环永远睡一轮再来，
// 单轮故障不会终止调度；ctx 取消时干净退出。

// Every 阻塞运行，直到 ctx 取消。
func Every(ctx context.Context, name string, interval time.Duration, task func(context.Context)) {
	if task == nil || interval <= 0 {
		logger.Warnf("scheduler %s: 参数无效，退出", name)
		return
	}
	logger.Infof("scheduler %s: started interval=%s", name, interval)
	for {
		runOnce(ctx, name, task)
		timer := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			logger.Infof("scheduler %s: ctx done, exit", name)
			return
		case <-timer.C:
		}
	}
}

func runOnce(ctx context.Context, name string, task func(context.Context)) {
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("scheduler %s: task panic: %v", name, r)
		}
	}()
	task(ctx)
}
