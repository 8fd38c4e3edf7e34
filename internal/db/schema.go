package db

// SchemaSQL contains the database schema initialization SQL for the four
// memory tiers plus the maintenance job ledger.
const SchemaSQL = `
    -- ==========================================================================
    -- RECENT_ITEM TABLE (tier 1: raw interaction turns)
    -- ==========================================================================
    DEFINE TABLE IF NOT EXISTS recent_item SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS agent_id ON recent_item TYPE string;
    DEFINE FIELD IF NOT EXISTS query ON recent_item TYPE string;
    DEFINE FIELD IF NOT EXISTS response ON recent_item TYPE string;
    -- Set when the item is absorbed into a tier-2 segment
    DEFINE FIELD IF NOT EXISTS segment_id ON recent_item TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS created ON recent_item TYPE datetime DEFAULT time::now();

    DEFINE INDEX IF NOT EXISTS recent_item_agent ON recent_item FIELDS agent_id;

    -- ==========================================================================
    -- SEGMENT TABLE (tier 2: topical clusters with heat lifecycle)
    -- ==========================================================================
    DEFINE TABLE IF NOT EXISTS segment SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS agent_id ON segment TYPE string;
    DEFINE FIELD IF NOT EXISTS summary ON segment TYPE string;
    DEFINE FIELD IF NOT EXISTS keywords ON segment TYPE array<string>;
    DEFINE FIELD IF NOT EXISTS embedding ON segment TYPE array<float>;
    DEFINE FIELD IF NOT EXISTS heat ON segment TYPE float DEFAULT 0.0;
    DEFINE FIELD IF NOT EXISTS visit_count ON segment TYPE int DEFAULT 0;
    -- A segment always holds at least its seed item
    DEFINE FIELD IF NOT EXISTS item_count ON segment TYPE int DEFAULT 1 ASSERT $value >= 1;
    DEFINE FIELD IF NOT EXISTS accessed ON segment TYPE datetime DEFAULT time::now();
    DEFINE FIELD IF NOT EXISTS created ON segment TYPE datetime DEFAULT time::now();

    DEFINE INDEX IF NOT EXISTS segment_agent ON segment FIELDS agent_id;
    DEFINE INDEX IF NOT EXISTS segment_embedding ON segment FIELDS embedding HNSW DIMENSION 384 DIST COSINE TYPE F32;

    -- ==========================================================================
    -- PERSONA_KNOWLEDGE TABLE (tier 3: per-agent facts and traits)
    -- ==========================================================================
    DEFINE TABLE IF NOT EXISTS persona_knowledge SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS agent_id ON persona_knowledge TYPE string;
    -- Exclusive owner: exactly one persona holds each record
    DEFINE FIELD IF NOT EXISTS owner ON persona_knowledge TYPE string ASSERT $value IN ['object', 'agent'];
    DEFINE FIELD IF NOT EXISTS persona_id ON persona_knowledge TYPE string;
    DEFINE FIELD IF NOT EXISTS kind ON persona_knowledge TYPE string ASSERT $value IN ['fact', 'trait'];
    DEFINE FIELD IF NOT EXISTS content ON persona_knowledge TYPE string;
    DEFINE FIELD IF NOT EXISTS confidence ON persona_knowledge TYPE float DEFAULT 0.5;
    DEFINE FIELD IF NOT EXISTS keywords ON persona_knowledge TYPE array<string> DEFAULT [];
    DEFINE FIELD IF NOT EXISTS promoted ON persona_knowledge TYPE bool DEFAULT false;
    DEFINE FIELD IF NOT EXISTS shared_entry_id ON persona_knowledge TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS created ON persona_knowledge TYPE datetime DEFAULT time::now();

    DEFINE INDEX IF NOT EXISTS knowledge_agent ON persona_knowledge FIELDS agent_id;

    -- ==========================================================================
    -- SHARED_ENTRY TABLE (tier 4: cross-agent pool)
    -- ==========================================================================
    DEFINE TABLE IF NOT EXISTS shared_entry SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS content ON shared_entry TYPE string;
    DEFINE FIELD IF NOT EXISTS agent_id ON shared_entry TYPE string;
    DEFINE FIELD IF NOT EXISTS importance ON shared_entry TYPE float ASSERT $value >= 0.0 AND $value <= 1.0;
    DEFINE FIELD IF NOT EXISTS created ON shared_entry TYPE datetime DEFAULT time::now();

    DEFINE INDEX IF NOT EXISTS shared_importance ON shared_entry FIELDS importance;

    -- ==========================================================================
    -- MAINTENANCE_JOB TABLE (background operation ledger)
    -- ==========================================================================
    DEFINE TABLE IF NOT EXISTS maintenance_job SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS job_type ON maintenance_job TYPE string;
    DEFINE FIELD IF NOT EXISTS agent_id ON maintenance_job TYPE string;
    DEFINE FIELD IF NOT EXISTS status ON maintenance_job TYPE string;
    DEFINE FIELD IF NOT EXISTS attempts ON maintenance_job TYPE int DEFAULT 0;
    DEFINE FIELD IF NOT EXISTS result ON maintenance_job TYPE option<object> FLEXIBLE;
    DEFINE FIELD IF NOT EXISTS error ON maintenance_job TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS started_at ON maintenance_job TYPE datetime DEFAULT time::now();
    DEFINE FIELD IF NOT EXISTS completed_at ON maintenance_job TYPE option<datetime>;

    DEFINE INDEX IF NOT EXISTS job_agent ON maintenance_job FIELDS agent_id;
`
