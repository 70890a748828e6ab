package feedview

import (
	"sort"

	"mission-service/internal/model"
)

// FeedPost is a post projected with its author for the donor feed.
// Org-authored posts have no missionary and carry the org flag instead.
type FeedPost struct {
	model.Post
	AuthorName   string `json:"author_name"`
	AuthorAvatar string `json:"author_avatar,omitempty"`
	IsOrgPost    bool   `json:"is_org_post"`
}

// Supporter is one follower of a missionary with giving aggregates.
type Supporter struct {
	DonorID         uint   `json:"donor_id"`
	ProfileID       uint   `json:"profile_id"`
	Name            string `json:"name"`
	AvatarURL       string `json:"avatar_url,omitempty"`
	TotalGivenCents int64  `json:"total_given_cents"`
	DonationCount   int    `json:"donation_count"`
}

// CommentNode is a root comment with its direct replies.
type CommentNode struct {
	model.PostComment
	Replies []model.PostComment `json:"replies"`
}

// FundProgress is a fund with its completion ratio.
type FundProgress struct {
	model.Fund
	PercentFunded float64 `json:"percent_funded"`
}

// DashboardStats are the tenant-level aggregates shown on the admin
// dashboard.
type DashboardStats struct {
	PostCount        int   `json:"post_count"`
	DonorCount       int   `json:"donor_count"`
	DonationCount    int   `json:"donation_count"`
	TotalRaisedCents int64 `json:"total_raised_cents"`
}

// DonorFeed assembles the feed for one donor: published posts from the
// missionaries the donor follows, plus org posts when the preferences
// include them, filtered by post type and sorted pinned-first then
// newest-first.
func (s *Store) DonorFeed(donorID uint) []FeedPost {
	s.mu.RLock()
	defer s.mu.RUnlock()

	donor, ok := s.donors[donorID]
	if !ok {
		return nil
	}
	prefs := s.prefs[donorID]

	var feed []FeedPost
	for _, fid := range s.followsByDonor[donorID] {
		follow := s.follows[fid]
		if follow == nil {
			continue
		}
		for _, pid := range s.postsByMissionary[follow.MissionaryID] {
			if fp, ok := s.projectPostLocked(pid, prefs); ok {
				feed = append(feed, fp)
			}
		}
	}
	if prefs == nil || prefs.FollowsOrg {
		for _, pid := range s.orgPostsByTenant[donor.TenantID] {
			if fp, ok := s.projectPostLocked(pid, prefs); ok {
				feed = append(feed, fp)
			}
		}
	}

	sort.Slice(feed, func(i, j int) bool {
		if feed[i].IsPinned != feed[j].IsPinned {
			return feed[i].IsPinned
		}
		return feed[i].CreatedAt.After(feed[j].CreatedAt)
	})
	return feed
}

// projectPostLocked applies the feed filters and joins the author
// profile. Caller holds at least the read lock.
func (s *Store) projectPostLocked(postID uint, prefs *model.DonorFeedPreferences) (FeedPost, bool) {
	p := s.posts[postID]
	if p == nil || p.Status != model.PostStatusPublished {
		return FeedPost{}, false
	}
	if prefs != nil && !prefs.AllowsPostType(p.PostType) {
		return FeedPost{}, false
	}

	fp := FeedPost{Post: *p, IsOrgPost: p.MissionaryID == nil}
	if p.MissionaryID != nil {
		if m := s.missionaries[*p.MissionaryID]; m != nil {
			if prof := s.profiles[m.ProfileID]; prof != nil {
				fp.AuthorName = prof.DisplayName()
				fp.AuthorAvatar = prof.AvatarURL
			}
		}
	}
	return fp, true
}

// SupporterList returns the donors following a missionary, joined to
// their profiles, with giving totals computed from succeeded donations
// to that missionary.
func (s *Store) SupporterList(missionaryID uint) []Supporter {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var supporters []Supporter
	for _, fid := range s.followsByMissionary[missionaryID] {
		follow := s.follows[fid]
		if follow == nil {
			continue
		}
		donor := s.donors[follow.DonorID]
		if donor == nil {
			continue
		}
		sup := Supporter{DonorID: donor.ID, ProfileID: donor.ProfileID}
		if prof := s.profiles[donor.ProfileID]; prof != nil {
			sup.Name = prof.DisplayName()
			sup.AvatarURL = prof.AvatarURL
		}
		for _, did := range s.donationsByDonor[donor.ID] {
			d := s.donations[did]
			if d == nil || d.Status != model.DonationStatusSucceeded {
				continue
			}
			if d.MissionaryID == nil || *d.MissionaryID != missionaryID {
				continue
			}
			sup.TotalGivenCents += d.AmountCents
			sup.DonationCount++
		}
		supporters = append(supporters, sup)
	}

	sort.Slice(supporters, func(i, j int) bool {
		return supporters[i].TotalGivenCents > supporters[j].TotalGivenCents
	})
	return supporters
}

// CommentThread returns the root comments on a post, newest first, each
// with its direct replies oldest first.
func (s *Store) CommentThread(postID uint) []CommentNode {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var thread []CommentNode
	for _, cid := range s.commentsByPost[postID] {
		c := s.comments[cid]
		if c == nil {
			continue
		}
		node := CommentNode{PostComment: *c, Replies: []model.PostComment{}}
		for _, rid := range s.commentsByParent[cid] {
			if r := s.comments[rid]; r != nil {
				node.Replies = append(node.Replies, *r)
			}
		}
		sort.Slice(node.Replies, func(i, j int) bool {
			return node.Replies[i].CreatedAt.Before(node.Replies[j].CreatedAt)
		})
		thread = append(thread, node)
	}

	sort.Slice(thread, func(i, j int) bool {
		return thread[i].CreatedAt.After(thread[j].CreatedAt)
	})
	return thread
}

// MissionaryFunds returns a missionary's funds with completion ratios,
// active funds first.
func (s *Store) MissionaryFunds(missionaryID uint) []FundProgress {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []FundProgress
	for _, fid := range s.fundsByMissionary[missionaryID] {
		f := s.funds[fid]
		if f == nil {
			continue
		}
		fp := FundProgress{Fund: *f}
		if f.GoalCents > 0 {
			fp.PercentFunded = float64(f.CurrentCents) / float64(f.GoalCents) * 100
		}
		out = append(out, fp)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Active != out[j].Active {
			return out[i].Active
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// TenantStats computes the admin dashboard aggregates for one tenant.
func (s *Store) TenantStats(tenantID uint) DashboardStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var stats DashboardStats
	for _, p := range s.posts {
		if p.TenantID == tenantID {
			stats.PostCount++
		}
	}
	for _, d := range s.donors {
		if d.TenantID == tenantID {
			stats.DonorCount++
		}
	}
	for _, d := range s.donations {
		if d.TenantID != tenantID {
			continue
		}
		stats.DonationCount++
		if d.Status == model.DonationStatusSucceeded {
			stats.TotalRaisedCents += d.AmountCents
		}
	}
	return stats
}

// GivingHistory returns a donor's donations joined to the receiving
// missionary's display name, newest first.
func (s *Store) GivingHistory(donorID uint) []DonationEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []DonationEntry
	for _, did := range s.donationsByDonor[donorID] {
		d := s.donations[did]
		if d == nil {
			continue
		}
		entry := DonationEntry{Donation: *d}
		if d.MissionaryID != nil {
			if m := s.missionaries[*d.MissionaryID]; m != nil {
				if prof := s.profiles[m.ProfileID]; prof != nil {
					entry.MissionaryName = prof.DisplayName()
				}
			}
		}
		out = append(out, entry)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// DonationEntry is a donation projected with the recipient's name for
// the donor's giving history.
type DonationEntry struct {
	model.Donation
	MissionaryName string `json:"missionary_name,omitempty"`
}
