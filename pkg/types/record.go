// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the clintra aggregation
// pipeline. Implements: prd010-fanout (Record variants, ResultSet);
//
//	prd011-enrichment (EnrichedSummary).
//
// See docs/ARCHITECTURE.md § Data Structures.
package types

// Record is a single result from one biomedical source. Each source
// produces its own variant (Article, Trial, Compound, ...) carrying the
// fields that source actually returns; the fanout layer only depends on
// the natural key, the title, and provenance.
type Record interface {
	// NaturalKey is the source-assigned identifier (PMID, NCT ID,
	// PubChem CID, PDB ID, ...) used to detect duplicates across
	// query variations.
	NaturalKey() string

	// RecordTitle is the human-readable title or name of the record.
	RecordTitle() string

	// SourceName identifies which connector produced this record
	// (e.g. "pubmed", "clinicaltrials").
	SourceName() string

	// URL links to the record on the source's public site.
	URL() string
}

// Article is a literature record from PubMed.
type Article struct {
	PMID     string   `json:"pmid" yaml:"pmid"`
	Title    string   `json:"title" yaml:"title"`
	Abstract string   `json:"abstract" yaml:"abstract"`
	Authors  []string `json:"authors,omitempty" yaml:"authors,omitempty"`
	Journal  string   `json:"journal" yaml:"journal"`
	PubDate  string   `json:"pub_date" yaml:"pub_date"`
	Link     string   `json:"source_url" yaml:"source_url"`
}

func (a Article) NaturalKey() string  { return a.PMID }
func (a Article) RecordTitle() string { return a.Title }
func (a Article) SourceName() string  { return "pubmed" }
func (a Article) URL() string         { return a.Link }

// Trial is a clinical trial record from ClinicalTrials.gov. NCT IDs carry
// the fixed "NCT" prefix followed by an eight-digit suffix.
type Trial struct {
	NCTID         string   `json:"nct_id" yaml:"nct_id"`
	Title         string   `json:"title" yaml:"title"`
	Status        string   `json:"status" yaml:"status"`
	Phase         string   `json:"phase" yaml:"phase"`
	Conditions    []string `json:"conditions,omitempty" yaml:"conditions,omitempty"`
	Interventions []string `json:"interventions,omitempty" yaml:"interventions,omitempty"`
	Link          string   `json:"source_url" yaml:"source_url"`
}

func (t Trial) NaturalKey() string  { return t.NCTID }
func (t Trial) RecordTitle() string { return t.Title }
func (t Trial) SourceName() string  { return "clinicaltrials" }
func (t Trial) URL() string         { return t.Link }

// Compound is a chemical compound record. Database distinguishes the
// provider ("pubchem" or "chembl") since both return compound shapes.
type Compound struct {
	CID              string   `json:"cid" yaml:"cid"`
	Name             string   `json:"name" yaml:"name"`
	Synonyms         []string `json:"synonyms,omitempty" yaml:"synonyms,omitempty"`
	MolecularFormula string   `json:"molecular_formula" yaml:"molecular_formula"`
	MolecularWeight  string   `json:"molecular_weight" yaml:"molecular_weight"`
	IUPACName        string   `json:"iupac_name,omitempty" yaml:"iupac_name,omitempty"`
	Database         string   `json:"source" yaml:"source"`
	Link             string   `json:"source_url" yaml:"source_url"`
}

func (c Compound) NaturalKey() string  { return c.CID }
func (c Compound) RecordTitle() string { return c.Name }
func (c Compound) SourceName() string  { return c.Database }
func (c Compound) URL() string         { return c.Link }

// Structure is a protein structure record from RCSB PDB.
type Structure struct {
	PDBID      string `json:"pdb_id" yaml:"pdb_id"`
	Title      string `json:"title" yaml:"title"`
	Resolution string `json:"resolution" yaml:"resolution"`
	Method     string `json:"method" yaml:"method"`
	Organism   string `json:"organism" yaml:"organism"`
	Link       string `json:"source_url" yaml:"source_url"`
}

func (s Structure) NaturalKey() string  { return s.PDBID }
func (s Structure) RecordTitle() string { return s.Title }
func (s Structure) SourceName() string  { return "pdb" }
func (s Structure) URL() string         { return s.Link }

// Pathway is a biological pathway record from KEGG.
type Pathway struct {
	PathwayID   string `json:"pathway_id" yaml:"pathway_id"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Link        string `json:"source_url" yaml:"source_url"`
}

func (p Pathway) NaturalKey() string  { return p.PathwayID }
func (p Pathway) RecordTitle() string { return p.Name }
func (p Pathway) SourceName() string  { return "kegg" }
func (p Pathway) URL() string         { return p.Link }

// Drug is a curated drug record from DrugBank.
type Drug struct {
	DrugBankID        string   `json:"drugbank_id" yaml:"drugbank_id"`
	Name              string   `json:"name" yaml:"name"`
	Description       string   `json:"description" yaml:"description"`
	Indications       []string `json:"indications,omitempty" yaml:"indications,omitempty"`
	MechanismOfAction string   `json:"mechanism_of_action" yaml:"mechanism_of_action"`
	ApprovalStatus    string   `json:"approval_status" yaml:"approval_status"`
	Link              string   `json:"source_url" yaml:"source_url"`
}

func (d Drug) NaturalKey() string  { return d.DrugBankID }
func (d Drug) RecordTitle() string { return d.Name }
func (d Drug) SourceName() string  { return "drugbank" }
func (d Drug) URL() string         { return d.Link }

// Protein is a protein record from UniProtKB.
type Protein struct {
	Accession   string `json:"accession" yaml:"accession"`
	EntryName   string `json:"entry_name" yaml:"entry_name"`
	ProteinName string `json:"protein_name" yaml:"protein_name"`
	Organism    string `json:"organism" yaml:"organism"`
	Length      int    `json:"length,omitempty" yaml:"length,omitempty"`
	Link        string `json:"source_url" yaml:"source_url"`
}

func (p Protein) NaturalKey() string  { return p.Accession }
func (p Protein) RecordTitle() string { return p.ProteinName }
func (p Protein) SourceName() string  { return "uniprot" }
func (p Protein) URL() string         { return p.Link }
