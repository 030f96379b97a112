package service

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/pkg/errors"

	"github.com/JinnyViboonlarp/app-nel/mmif"
	"github.com/JinnyViboonlarp/app-nel/wikidata"
)

// entityLinker looks up candidate knowledge-base entities for a mention.
// Satisfied by wikidata.Client.
type entityLinker interface {
	SearchEntities(ctx context.Context, search string) ([]wikidata.Entity, error)
}

// EntityLinkingService maps named-entity views in an MMIF document to new
// views of Wikidata-linked entities and linked-entity relations.
type EntityLinkingService struct {
	appWhitelist *regexp.Regexp
	linker       entityLinker
}

// NewEntityLinkingService builds the mapper. The whitelist selects which
// source apps' views are linked (typically the spaCy NLP app).
func NewEntityLinkingService(appWhitelist *regexp.Regexp, linker entityLinker) *EntityLinkingService {
	return &EntityLinkingService{appWhitelist: appWhitelist, linker: linker}
}

// Annotate adds a linked-entity view for every whitelisted view that carries
// named-entity annotations. The input views are left untouched.
func (s *EntityLinkingService) Annotate(ctx context.Context, m *mmif.Mmif) error {
	if s.appWhitelist == nil {
		return errors.New("source app whitelist is invalid")
	}

	ids := newIdentifierSource()
	sourceViews := m.Views
	for _, view := range sourceViews {
		if !s.appWhitelist.MatchString(view.Metadata.App) {
			continue
		}
		detail, ok := namedEntityContain(view)
		if !ok {
			continue
		}

		// When the source view's metadata names the document its entities are
		// anchored to, the new view inherits that anchor (scoped with the
		// source view id) and per-annotation documents pass through as
		// written. Otherwise each annotation carries its own document, which
		// gets scoped instead.
		scopedDoc := ""
		docPrefix := view.ID
		if detail.Document != "" {
			scopedDoc = view.ID + ":" + detail.Document
			docPrefix = ""
		}

		target := m.NewView()
		s.signView(target)
		target.NewContain(LinkedNamedEntityURI, scopedDoc)
		target.NewContain(LinkedNamedEntityRelationURI, scopedDoc)

		if err := s.linkView(ctx, view, target, docPrefix, ids); err != nil {
			return err
		}
	}
	return nil
}

func namedEntityContain(view *mmif.View) (mmif.ContainsDetail, bool) {
	for atType, detail := range view.Metadata.Contains {
		if atTypeName(atType) == atTypeName(NamedEntityURI) {
			return detail, true
		}
	}
	return mmif.ContainsDetail{}, false
}

func (s *EntityLinkingService) signView(view *mmif.View) {
	view.Metadata.App = AppIdentifier + "/v" + AppVersion
	view.Metadata.Timestamp = time.Now().UTC().Format(time.RFC3339)
}

// linkedMention is a named entity that resolved against Wikidata, kept around
// for relation pairing.
type linkedMention struct {
	docKey     string
	rootI      int64
	text       string
	label      string
	wikidataID string
}

// headRelation is the syntactic head of one token, indexed by child token.
type headRelation struct {
	dep       string
	headText  string
	headLemma string
	headI     int64
}

func (s *EntityLinkingService) linkView(ctx context.Context, source *mmif.View, target *mmif.View, docPrefix string, ids *identifierSource) error {
	mentions, err := s.linkEntities(ctx, source, target, docPrefix, ids)
	if err != nil {
		return err
	}

	heads := collectHeadRelations(source)
	linkRelations(mentions, heads, target, docPrefix, ids)
	return nil
}

func (s *EntityLinkingService) linkEntities(ctx context.Context, source *mmif.View, target *mmif.View, docPrefix string, ids *identifierSource) ([]linkedMention, error) {
	mentions := []linkedMention{}
	byKey := map[string]int{}

	for _, ann := range source.Annotations {
		if atTypeName(ann.AtType) != atTypeName(NamedEntityURI) {
			continue
		}

		text := ann.Properties.GetString("text")
		entities, err := s.linker.SearchEntities(ctx, text)
		if err != nil {
			return nil, errors.Wrapf(err, "linking entity %q", text)
		}
		if len(entities) == 0 {
			// Wikidata knows nothing by this name, nothing to link
			continue
		}
		entity := entities[0]

		docKey := ann.Properties.GetString("document")
		annDoc := docKey
		if docPrefix != "" && annDoc != "" {
			annDoc = docPrefix + ":" + annDoc
		}

		linked := target.NewAnnotation(LinkedNamedEntityURI, ids.next("nel"))
		if annDoc != "" {
			linked.Properties.Set("document", annDoc)
		}
		if start, ok := ann.Properties.GetInt("start"); ok {
			linked.Properties.Set("start", start)
		}
		if end, ok := ann.Properties.GetInt("end"); ok {
			linked.Properties.Set("end", end)
		}
		rootI, hasRoot := ann.Properties.GetInt("root_i")
		if hasRoot {
			linked.Properties.Set("root_i", rootI)
		}
		linked.Properties.Set("text", text)
		if entity.Label != "" {
			linked.Properties.Set("label", entity.Label)
		}
		linked.Properties.Set("category", ann.Properties.GetString("category"))
		if entity.Description != "" {
			linked.Properties.Set("description", entity.Description)
		}
		if entity.ID != "" {
			linked.Properties.Set("wikidata_id", entity.ID)
		}
		if entity.URL != "" {
			linked.Properties.Set("url", entity.URL)
		}

		if !hasRoot {
			continue
		}
		mention := linkedMention{
			docKey:     docKey,
			rootI:      rootI,
			text:       text,
			label:      entity.Label,
			wikidataID: entity.ID,
		}
		key := mentionKey(docKey, rootI)
		if i, seen := byKey[key]; seen {
			// a later mention with the same root wins
			mentions[i] = mention
		} else {
			byKey[key] = len(mentions)
			mentions = append(mentions, mention)
		}
	}
	return mentions, nil
}

func mentionKey(docKey string, rootI int64) string {
	return fmt.Sprintf("%s#%d", docKey, rootI)
}

func collectHeadRelations(source *mmif.View) map[string]map[int64]headRelation {
	heads := map[string]map[int64]headRelation{}
	for _, ann := range source.Annotations {
		if atTypeName(ann.AtType) != atTypeName(SyntacticRelationURI) {
			continue
		}
		childI, ok := ann.Properties.GetInt("child_i")
		if !ok {
			continue
		}
		headI, _ := ann.Properties.GetInt("head_i")
		docKey := ann.Properties.GetString("document")
		if heads[docKey] == nil {
			heads[docKey] = map[int64]headRelation{}
		}
		heads[docKey][childI] = headRelation{
			dep:       ann.Properties.GetString("dep"),
			headText:  ann.Properties.GetString("head_text"),
			headLemma: ann.Properties.GetString("head_lemma"),
			headI:     headI,
		}
	}
	return heads
}

// linkRelations pairs linked entities from the same document whose roots
// share a syntactic head, and records the shared head as the relation.
func linkRelations(mentions []linkedMention, heads map[string]map[int64]headRelation, target *mmif.View, docPrefix string, ids *identifierSource) {
	for i := range mentions {
		for j := i + 1; j < len(mentions); j++ {
			e1, e2 := mentions[i], mentions[j]
			if e1.docKey != e2.docKey {
				continue
			}
			if e1.rootI > e2.rootI {
				e1, e2 = e2, e1
			}
			rel1, ok1 := heads[e1.docKey][e1.rootI]
			rel2, ok2 := heads[e2.docKey][e2.rootI]
			if !ok1 || !ok2 || rel1.headI != rel2.headI {
				continue
			}

			docID := e1.docKey
			if docPrefix != "" && docID != "" {
				docID = docPrefix + ":" + docID
			}

			relation := target.NewAnnotation(LinkedNamedEntityRelationURI, ids.next("nelr"))
			if docID != "" {
				relation.Properties.Set("document", docID)
			}
			relation.Properties.Set("e1_text", e1.text)
			relation.Properties.Set("e1_label", e1.label)
			relation.Properties.Set("e1_root_i", e1.rootI)
			relation.Properties.Set("e1_wikidata_id", e1.wikidataID)
			relation.Properties.Set("e1_dep", rel1.dep)
			relation.Properties.Set("e2_text", e2.text)
			relation.Properties.Set("e2_label", e2.label)
			relation.Properties.Set("e2_root_i", e2.rootI)
			relation.Properties.Set("e2_wikidata_id", e2.wikidataID)
			relation.Properties.Set("e2_dep", rel2.dep)
			relation.Properties.Set("rel_text", rel1.headText)
			relation.Properties.Set("rel_lemma", rel1.headLemma)
			relation.Properties.Set("rel_i", rel1.headI)
		}
	}
}
