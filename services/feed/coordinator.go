package feed

import (
	"context"
	"sync"

	"creatorhub/models"
)

// Tab selects one of the coordinator's loaders.
type Tab string

const (
	TabForYou    Tab = "forYou"
	TabFollowing Tab = "following"
)

// ParseTab maps a request value to a Tab.
func ParseTab(s string) (Tab, error) {
	switch Tab(s) {
	case TabForYou, TabFollowing:
		return Tab(s), nil
	default:
		return "", ErrUnknownTab
	}
}

// Coordinator holds the general and following loaders side by side. Both stay live
// whatever tab is active, so switching is instant and both keep receiving realtime inserts.
type Coordinator struct {
	forYou    *FeedLoader
	following *FollowingFeedLoader

	mu        sync.RWMutex
	activeTab Tab
}

func NewCoordinator(forYou *FeedLoader, following *FollowingFeedLoader) *Coordinator {
	return &Coordinator{
		forYou:    forYou,
		following: following,
		activeTab: TabForYou,
	}
}

func (c *Coordinator) ForYou() *FeedLoader {
	return c.forYou
}

func (c *Coordinator) Following() *FollowingFeedLoader {
	return c.following
}

func (c *Coordinator) SetActiveTab(tab Tab) error {
	if _, err := ParseTab(string(tab)); err != nil {
		return err
	}
	c.mu.Lock()
	c.activeTab = tab
	c.mu.Unlock()
	return nil
}

func (c *Coordinator) ActiveTab() Tab {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.activeTab
}

// Loader returns the loader behind tab.
func (c *Coordinator) Loader(tab Tab) (Feed, error) {
	switch tab {
	case TabForYou:
		return c.forYou, nil
	case TabFollowing:
		return c.following, nil
	default:
		return nil, ErrUnknownTab
	}
}

// Active returns the loader for the active tab.
func (c *Coordinator) Active() Feed {
	l, _ := c.Loader(c.ActiveTab())
	return l
}

// ActiveState is the state of the active tab's loader.
func (c *Coordinator) ActiveState() State {
	return c.Active().State()
}

// AddNewPost hands rec to both loaders. It reports whether either list changed.
func (c *Coordinator) AddNewPost(rec models.ContentRecord) (bool, error) {
	addedForYou, err := c.forYou.AddNewPost(rec)
	if err != nil {
		return false, err
	}
	addedFollowing, err := c.following.AddNewPost(rec)
	if err != nil {
		return addedForYou, err
	}
	return addedForYou || addedFollowing, nil
}

// LoadInitial loads the first page of both feeds concurrently.
func (c *Coordinator) LoadInitial(ctx context.Context) {
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		c.forYou.LoadInitial(ctx)
	}()
	go func() {
		defer wg.Done()
		c.following.LoadInitial(ctx)
	}()
	wg.Wait()
}

// Start opens both realtime subscriptions.
func (c *Coordinator) Start(ctx context.Context) {
	c.forYou.Start(ctx)
	c.following.Start(ctx)
}

func (c *Coordinator) Close() {
	c.forYou.Close()
	c.following.Close()
}
