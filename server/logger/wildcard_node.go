package logger

import (
	"strings"
)

const (
	wildcardOne = "*"
	wildcardAny = "**"
)

// wildcardNode is a trie of namespace sections. Every node holds the level
// configured for the namespace ending at it, or LevelUnknown.
type wildcardNode struct {
	level    Level
	name     string
	children map[string]*wildcardNode
}

var _ Config = &wildcardNode{}

func newWildcardNode(config ConfigMap) *wildcardNode {
	root := &wildcardNode{level: LevelDisabled}

	for k, v := range config {
		root.add(k, v)
	}

	return root
}

func (n *wildcardNode) child(name string) *wildcardNode {
	c, ok := n.children[name]
	if !ok {
		c = &wildcardNode{
			level: LevelUnknown,
			name:  name,
		}

		if n.children == nil {
			n.children = map[string]*wildcardNode{}
		}

		n.children[name] = c
	}

	return c
}

func (n *wildcardNode) add(namespace string, level Level) {
	node := n

	if namespace != "" {
		for _, name := range strings.Split(namespace, ":") {
			node = node.child(name)
		}
	}

	node.level = level
}

func (n *wildcardNode) match(names []string) (Level, bool) {
	if len(names) == 0 {
		if n.level != LevelUnknown {
			return n.level, true
		}

		// A trailing ** also matches zero sections.
		if c, ok := n.children[wildcardAny]; ok && c.level != LevelUnknown {
			return c.level, true
		}

		return LevelUnknown, false
	}

	if c, ok := n.children[names[0]]; ok {
		if level, ok := c.match(names[1:]); ok {
			return level, true
		}
	}

	if n.name == wildcardAny {
		// ** swallows any number of sections before the next literal.
		for i := 1; i < len(names); i++ {
			if c, ok := n.children[names[i]]; ok {
				if level, ok := c.match(names[i+1:]); ok {
					return level, true
				}
			}
		}

		if n.level != LevelUnknown {
			return n.level, true
		}
	}

	if c, ok := n.children[wildcardOne]; ok {
		if level, ok := c.match(names[1:]); ok {
			return level, true
		}
	}

	if c, ok := n.children[wildcardAny]; ok {
		if level, ok := c.match(names); ok {
			return level, true
		}
	}

	return LevelUnknown, false
}

// LevelForNamespace implements Config.
func (n *wildcardNode) LevelForNamespace(namespace string) Level {
	if namespace == "" {
		return n.level
	}

	if level, ok := n.match(strings.Split(namespace, ":")); ok {
		return level
	}

	return n.level
}
