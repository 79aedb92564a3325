// Copyright 2025 The axfor Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package store

import (
	"github.com/google/btree"

	"pollStore/internal/poll"
)

// orderItem places an item in its collection's creation order.
// It implements btree.Item.
type orderItem struct {
	seq uint64
	id  string
}

// Less implements btree.Item.
func (oi orderItem) Less(other btree.Item) bool {
	return oi.seq < other.(orderItem).seq
}

type entry struct {
	item *poll.Item
	seq  uint64
}

// collection is the id map of one kind plus its creation-order index.
type collection struct {
	kind  poll.Kind
	items map[string]*entry
	order *btree.BTree
}

func newCollection(kind poll.Kind) *collection {
	return &collection{
		kind:  kind,
		items: make(map[string]*entry),
		order: btree.New(32),
	}
}

func (c *collection) exists(id string) bool {
	_, ok := c.items[id]
	return ok
}

func (c *collection) insert(it *poll.Item, seq uint64) {
	c.items[it.ID] = &entry{item: it, seq: seq}
	c.order.ReplaceOrInsert(orderItem{seq: seq, id: it.ID})
}

// newestFirst visits items from the most recently inserted to the oldest.
func (c *collection) newestFirst(fn func(it *poll.Item) bool) {
	c.order.Descend(func(i btree.Item) bool {
		e, ok := c.items[i.(orderItem).id]
		if !ok {
			return true
		}
		return fn(e.item)
	})
}
