// Package feedview maintains in-memory snapshots of the tables backing
// the donor-facing read models, with secondary indexes on the foreign
// keys used by the derived views. It replaces per-request join queries
// for the feed, supporter and dashboard views.
package feedview

import (
	"sync"

	"gorm.io/gorm"

	"mission-service/internal/model"
	"mission-service/prometheus"
)

// Store holds table snapshots keyed by primary key. All access goes
// through the mutex; derived views take the read lock for their whole
// pipeline so they observe a consistent snapshot.
type Store struct {
	mu sync.RWMutex

	posts        map[uint]*model.Post
	profiles     map[uint]*model.Profile
	missionaries map[uint]*model.Missionary
	donors       map[uint]*model.Donor
	donations    map[uint]*model.Donation
	funds        map[uint]*model.Fund
	follows      map[uint]*model.Follow
	comments     map[uint]*model.PostComment
	prefs        map[uint]*model.DonorFeedPreferences // keyed by donor id

	// secondary indexes: FK -> ids
	postsByMissionary     map[uint][]uint
	orgPostsByTenant      map[uint][]uint // posts with no missionary author
	commentsByPost        map[uint][]uint // root comments only
	commentsByParent      map[uint][]uint
	followsByDonor        map[uint][]uint
	followsByMissionary   map[uint][]uint
	donationsByDonor      map[uint][]uint
	donationsByMissionary map[uint][]uint
	fundsByMissionary     map[uint][]uint
	missionaryByProfile   map[uint]uint
}

// New creates an empty store. Call Load to pull the initial snapshots.
func New() *Store {
	return &Store{
		posts:        make(map[uint]*model.Post),
		profiles:     make(map[uint]*model.Profile),
		missionaries: make(map[uint]*model.Missionary),
		donors:       make(map[uint]*model.Donor),
		donations:    make(map[uint]*model.Donation),
		funds:        make(map[uint]*model.Fund),
		follows:      make(map[uint]*model.Follow),
		comments:     make(map[uint]*model.PostComment),
		prefs:        make(map[uint]*model.DonorFeedPreferences),

		postsByMissionary:     make(map[uint][]uint),
		orgPostsByTenant:      make(map[uint][]uint),
		commentsByPost:        make(map[uint][]uint),
		commentsByParent:      make(map[uint][]uint),
		followsByDonor:        make(map[uint][]uint),
		followsByMissionary:   make(map[uint][]uint),
		donationsByDonor:      make(map[uint][]uint),
		donationsByMissionary: make(map[uint][]uint),
		fundsByMissionary:     make(map[uint][]uint),
		missionaryByProfile:   make(map[uint]uint),
	}
}

// Load replaces the store contents with fresh table snapshots. Intended
// to run once at startup; the handlers keep the store current afterward
// through the mutators.
func (s *Store) Load(db *gorm.DB) error {
	var (
		posts        []model.Post
		profiles     []model.Profile
		missionaries []model.Missionary
		donors       []model.Donor
		donations    []model.Donation
		funds        []model.Fund
		follows      []model.Follow
		comments     []model.PostComment
		prefs        []model.DonorFeedPreferences
	)

	if err := db.Find(&posts).Error; err != nil {
		return err
	}
	if err := db.Find(&profiles).Error; err != nil {
		return err
	}
	if err := db.Find(&missionaries).Error; err != nil {
		return err
	}
	if err := db.Find(&donors).Error; err != nil {
		return err
	}
	if err := db.Find(&donations).Error; err != nil {
		return err
	}
	if err := db.Find(&funds).Error; err != nil {
		return err
	}
	if err := db.Find(&follows).Error; err != nil {
		return err
	}
	if err := db.Find(&comments).Error; err != nil {
		return err
	}
	if err := db.Find(&prefs).Error; err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range profiles {
		s.profiles[profiles[i].ID] = &profiles[i]
	}
	for i := range missionaries {
		m := &missionaries[i]
		s.missionaries[m.ID] = m
		s.missionaryByProfile[m.ProfileID] = m.ID
	}
	for i := range donors {
		s.donors[donors[i].ID] = &donors[i]
	}
	for i := range posts {
		s.indexPostLocked(&posts[i])
	}
	for i := range donations {
		s.indexDonationLocked(&donations[i])
	}
	for i := range funds {
		s.indexFundLocked(&funds[i])
	}
	for i := range follows {
		s.indexFollowLocked(&follows[i])
	}
	for i := range comments {
		s.indexCommentLocked(&comments[i])
	}
	for i := range prefs {
		s.prefs[prefs[i].DonorID] = &prefs[i]
	}

	s.recordSizesLocked()
	return nil
}

func (s *Store) recordSizesLocked() {
	prometheus.RecordFeedStoreSize("posts", len(s.posts))
	prometheus.RecordFeedStoreSize("profiles", len(s.profiles))
	prometheus.RecordFeedStoreSize("donations", len(s.donations))
	prometheus.RecordFeedStoreSize("comments", len(s.comments))
	prometheus.RecordFeedStoreSize("follows", len(s.follows))
}

// removeID deletes one id from an index bucket.
func removeID(index map[uint][]uint, key, id uint) {
	ids := index[key]
	for i, v := range ids {
		if v == id {
			index[key] = append(ids[:i], ids[i+1:]...)
			break
		}
	}
	if len(index[key]) == 0 {
		delete(index, key)
	}
}

// --- Posts ---

func (s *Store) indexPostLocked(p *model.Post) {
	s.posts[p.ID] = p
	if p.MissionaryID != nil {
		s.postsByMissionary[*p.MissionaryID] = append(s.postsByMissionary[*p.MissionaryID], p.ID)
	} else {
		s.orgPostsByTenant[p.TenantID] = append(s.orgPostsByTenant[p.TenantID], p.ID)
	}
}

func (s *Store) unindexPostLocked(p *model.Post) {
	if p.MissionaryID != nil {
		removeID(s.postsByMissionary, *p.MissionaryID, p.ID)
	} else {
		removeID(s.orgPostsByTenant, p.TenantID, p.ID)
	}
	delete(s.posts, p.ID)
}

// UpsertPost inserts or replaces a post snapshot.
func (s *Store) UpsertPost(p model.Post) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if old, ok := s.posts[p.ID]; ok {
		s.unindexPostLocked(old)
	}
	s.indexPostLocked(&p)
}

// DeletePost removes a post and its comments and reactions from the
// snapshots, mirroring the cascading delete the handler performs.
func (s *Store) DeletePost(id uint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.posts[id]
	if !ok {
		return
	}
	// all comments on the post go, whatever their depth
	for cid, c := range s.comments {
		if c.PostID == id {
			if c.ParentID != nil {
				removeID(s.commentsByParent, *c.ParentID, cid)
			} else {
				removeID(s.commentsByPost, id, cid)
			}
			delete(s.commentsByParent, cid)
			delete(s.comments, cid)
		}
	}
	s.unindexPostLocked(p)
}

// --- Comments ---

func (s *Store) indexCommentLocked(c *model.PostComment) {
	s.comments[c.ID] = c
	if c.ParentID != nil {
		s.commentsByParent[*c.ParentID] = append(s.commentsByParent[*c.ParentID], c.ID)
	} else {
		s.commentsByPost[c.PostID] = append(s.commentsByPost[c.PostID], c.ID)
	}
}

func (s *Store) deleteCommentLocked(id uint) {
	c, ok := s.comments[id]
	if !ok {
		return
	}
	// direct replies go with the comment, deeper levels are untouched
	for _, rid := range append([]uint(nil), s.commentsByParent[id]...) {
		r := s.comments[rid]
		if r != nil {
			removeID(s.commentsByParent, id, rid)
			delete(s.comments, rid)
		}
	}
	delete(s.commentsByParent, id)
	if c.ParentID != nil {
		removeID(s.commentsByParent, *c.ParentID, id)
	} else {
		removeID(s.commentsByPost, c.PostID, id)
	}
	delete(s.comments, id)
}

// UpsertComment inserts or replaces a comment snapshot.
func (s *Store) UpsertComment(c model.PostComment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if old, ok := s.comments[c.ID]; ok {
		if old.ParentID != nil {
			removeID(s.commentsByParent, *old.ParentID, old.ID)
		} else {
			removeID(s.commentsByPost, old.PostID, old.ID)
		}
	}
	s.indexCommentLocked(&c)
}

// DeleteComment removes a comment and its direct replies (one level).
func (s *Store) DeleteComment(id uint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleteCommentLocked(id)
}

// --- Donations ---

func (s *Store) indexDonationLocked(d *model.Donation) {
	s.donations[d.ID] = d
	s.donationsByDonor[d.DonorID] = append(s.donationsByDonor[d.DonorID], d.ID)
	if d.MissionaryID != nil {
		s.donationsByMissionary[*d.MissionaryID] = append(s.donationsByMissionary[*d.MissionaryID], d.ID)
	}
}

// UpsertDonation inserts or replaces a donation snapshot.
func (s *Store) UpsertDonation(d model.Donation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if old, ok := s.donations[d.ID]; ok {
		removeID(s.donationsByDonor, old.DonorID, old.ID)
		if old.MissionaryID != nil {
			removeID(s.donationsByMissionary, *old.MissionaryID, old.ID)
		}
	}
	s.indexDonationLocked(&d)
}

// --- Funds ---

func (s *Store) indexFundLocked(f *model.Fund) {
	s.funds[f.ID] = f
	if f.MissionaryID != nil {
		s.fundsByMissionary[*f.MissionaryID] = append(s.fundsByMissionary[*f.MissionaryID], f.ID)
	}
}

// UpsertFund inserts or replaces a fund snapshot.
func (s *Store) UpsertFund(f model.Fund) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if old, ok := s.funds[f.ID]; ok && old.MissionaryID != nil {
		removeID(s.fundsByMissionary, *old.MissionaryID, old.ID)
	}
	s.indexFundLocked(&f)
}

// --- Follows ---

func (s *Store) indexFollowLocked(f *model.Follow) {
	s.follows[f.ID] = f
	s.followsByDonor[f.DonorID] = append(s.followsByDonor[f.DonorID], f.ID)
	s.followsByMissionary[f.MissionaryID] = append(s.followsByMissionary[f.MissionaryID], f.ID)
}

// UpsertFollow inserts or replaces a follow edge.
func (s *Store) UpsertFollow(f model.Follow) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if old, ok := s.follows[f.ID]; ok {
		removeID(s.followsByDonor, old.DonorID, old.ID)
		removeID(s.followsByMissionary, old.MissionaryID, old.ID)
	}
	s.indexFollowLocked(&f)
}

// DeleteFollow removes a follow edge.
func (s *Store) DeleteFollow(id uint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.follows[id]
	if !ok {
		return
	}
	removeID(s.followsByDonor, f.DonorID, f.ID)
	removeID(s.followsByMissionary, f.MissionaryID, f.ID)
	delete(s.follows, id)
}

// --- Profiles, missionaries, donors, preferences ---

// UpsertProfile inserts or replaces a profile snapshot.
func (s *Store) UpsertProfile(p model.Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[p.ID] = &p
}

// UpsertMissionary inserts or replaces a missionary snapshot.
func (s *Store) UpsertMissionary(m model.Missionary) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.missionaries[m.ID] = &m
	s.missionaryByProfile[m.ProfileID] = m.ID
}

// UpsertDonor inserts or replaces a donor snapshot.
func (s *Store) UpsertDonor(d model.Donor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.donors[d.ID] = &d
}

// UpsertPreferences inserts or replaces a donor's feed preferences.
func (s *Store) UpsertPreferences(p model.DonorFeedPreferences) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prefs[p.DonorID] = &p
}
