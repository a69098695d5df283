package adviser

import (
	"context"
	"os"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"

	"propguard/internal/logger"
)

// 中文说明：
// 系统提示词（persona）从 YAML 文件加载，文件变更时热更新，
// 改提示词不用重启进程（重启会清掉顾问网关的失败计数）。

const defaultSystemPrompt = "You are a professional forex and metals trader advising a funded " +
	"challenge account with hard drawdown limits. Be conservative and precise. " +
	"Prefer WAIT over marginal setups."

// Persona persona 文件结构。
type Persona struct {
	Name   string `yaml:"name"`
	System string `yaml:"system"`
}

// PersonaManager 持有当前 persona，支持热更新。
type PersonaManager struct {
	mu      sync.RWMutex
	path    string
	current Persona
}

func NewPersonaManager(path string) *PersonaManager {
	m := &PersonaManager{
		path:    strings.TrimSpace(path),
		current: Persona{Name: "default", System: defaultSystemPrompt},
	}
	if m.path != "" {
		if err := m.reload(); err != nil {
			logger.Warnf("persona 文件加载失败，使用内置提示词: %v", err)
		}
	}
	return m
}

// SystemPrompt 返回当前系统提示词。
func (m *PersonaManager) SystemPrompt() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current.System
}

func (m *PersonaManager) reload() error {
	data, err := os.ReadFile(m.path)
	if err != nil {
		return err
	}
	var p Persona
	if err := yaml.Unmarshal(data, &p); err != nil {
		return err
	}
	if strings.TrimSpace(p.System) == "" {
		p.System = defaultSystemPrompt
	}
	m.mu.Lock()
	m.current = p
	m.mu.Unlock()
	logger.Infof("persona 已加载: %s", p.Name)
	return nil
}

// Watch 监听 persona 文件变更直到 ctx 取消。无文件时直接返回。
func (m *PersonaManager) Watch(ctx context.Context) error {
	if m.path == "" {
		return nil
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()
	if err := watcher.Add(m.path); err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case evt, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if evt.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if err := m.reload(); err != nil {
				logger.Warnf("persona 热更新失败: %v", err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warnf("persona watcher 错误: %v", err)
		}
	}
}
